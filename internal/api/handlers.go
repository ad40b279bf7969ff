package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tallieo/bookkeeper/internal/domain"
	"github.com/tallieo/bookkeeper/internal/models"
	"github.com/tallieo/bookkeeper/internal/service"
)

// RecordSaver is the slice of the record service the handlers need.
type RecordSaver interface {
	SaveIncome(ctx context.Context, rec domain.FinancialRecord) (*domain.FinancialRecord, error)
	SaveExpense(ctx context.Context, rec domain.FinancialRecord) (*domain.FinancialRecord, error)
	Record(ctx context.Context, workspaceID, id uuid.UUID) (*domain.FinancialRecord, error)
}

type Handler struct {
	records RecordSaver
	log     zerolog.Logger
}

func NewHandler(records RecordSaver, log zerolog.Logger) *Handler {
	return &Handler{records: records, log: log}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, r.Method, "/health")
}

func (h *Handler) SaveIncomeHandler(w http.ResponseWriter, r *http.Request) {
	h.saveRecord(w, r, "/workspaces/{workspaceID}/incomes", h.records.SaveIncome)
}

func (h *Handler) SaveExpenseHandler(w http.ResponseWriter, r *http.Request) {
	h.saveRecord(w, r, "/workspaces/{workspaceID}/expenses", h.records.SaveExpense)
}

func (h *Handler) saveRecord(w http.ResponseWriter, r *http.Request, endpoint string,
	save func(context.Context, domain.FinancialRecord) (*domain.FinancialRecord, error)) {

	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues(r.Method, endpoint))
	defer timer.ObserveDuration()

	workspaceID, err := uuid.Parse(mux.Vars(r)["workspaceID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workspace id", r.Method, endpoint)
		return
	}

	var req models.SaveRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body", r.Method, endpoint)
		return
	}
	if err := req.Validate(); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, err.Error(), r.Method, endpoint)
		return
	}

	created := req.ID == nil
	saved, err := save(r.Context(), req.ToDomain(workspaceID))
	if err != nil {
		h.respondSaveError(w, r, endpoint, err)
		return
	}

	if created {
		w.Header().Set("Location", fmt.Sprintf("/api/v1/workspaces/%s/records/%s", workspaceID, saved.ID))
		respondWithJSON(w, http.StatusCreated, saved, r.Method, endpoint)
		return
	}
	respondWithJSON(w, http.StatusOK, saved, r.Method, endpoint)
}

func (h *Handler) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/workspaces/{workspaceID}/records/{id}"

	vars := mux.Vars(r)
	workspaceID, err := uuid.Parse(vars["workspaceID"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workspace id", r.Method, endpoint)
		return
	}
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid record id", r.Method, endpoint)
		return
	}

	rec, err := h.records.Record(r.Context(), workspaceID, id)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			respondWithError(w, http.StatusNotFound, nf.Error(), r.Method, endpoint)
			return
		}
		h.log.Error().Err(err).Msg("record fetch failed")
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error", r.Method, endpoint)
		return
	}
	respondWithJSON(w, http.StatusOK, rec, r.Method, endpoint)
}

func (h *Handler) respondSaveError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var nf *service.NotFoundError
	switch {
	case errors.As(err, &nf):
		respondWithError(w, http.StatusNotFound, nf.Error(), r.Method, endpoint)
	case errors.Is(err, service.ErrVersionConflict):
		respondWithError(w, http.StatusConflict, "Record was modified concurrently", r.Method, endpoint)
	default:
		h.log.Error().Err(err).Str("endpoint", endpoint).Msg("record save failed")
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error", r.Method, endpoint)
	}
}
