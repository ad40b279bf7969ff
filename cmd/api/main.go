package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/tallieo/bookkeeper/internal/api"
	"github.com/tallieo/bookkeeper/internal/config"
	"github.com/tallieo/bookkeeper/internal/logger"
	"github.com/tallieo/bookkeeper/internal/service"
	"github.com/tallieo/bookkeeper/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	db, err := store.NewStore(context.Background(), cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer db.Close()

	records := service.NewRecordService(db, db, db, db, db, service.SystemClock{})
	handler := api.NewHandler(records, logger.WithComponent("api"))

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/workspaces/{workspaceID}/incomes", handler.SaveIncomeHandler).Methods("POST")
	apiV1.HandleFunc("/workspaces/{workspaceID}/expenses", handler.SaveExpenseHandler).Methods("POST")
	apiV1.HandleFunc("/workspaces/{workspaceID}/records/{id}", handler.GetRecordHandler).Methods("GET")

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
