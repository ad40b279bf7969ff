package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallieo/bookkeeper/internal/api"
	"github.com/tallieo/bookkeeper/internal/domain"
	"github.com/tallieo/bookkeeper/internal/service"
)

type stubRecords struct {
	saveIncome  func(domain.FinancialRecord) (*domain.FinancialRecord, error)
	saveExpense func(domain.FinancialRecord) (*domain.FinancialRecord, error)
	record      func(workspaceID, id uuid.UUID) (*domain.FinancialRecord, error)
}

func (s *stubRecords) SaveIncome(_ context.Context, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	return s.saveIncome(rec)
}

func (s *stubRecords) SaveExpense(_ context.Context, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	return s.saveExpense(rec)
}

func (s *stubRecords) Record(_ context.Context, workspaceID, id uuid.UUID) (*domain.FinancialRecord, error) {
	return s.record(workspaceID, id)
}

func newRouter(records api.RecordSaver) *mux.Router {
	h := api.NewHandler(records, zerolog.Nop())
	r := mux.NewRouter()
	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/workspaces/{workspaceID}/incomes", h.SaveIncomeHandler).Methods("POST")
	apiV1.HandleFunc("/workspaces/{workspaceID}/expenses", h.SaveExpenseHandler).Methods("POST")
	apiV1.HandleFunc("/workspaces/{workspaceID}/records/{id}", h.GetRecordHandler).Methods("GET")
	return r
}

func TestSaveIncomeCreated(t *testing.T) {
	workspaceID := uuid.New()
	recordID := uuid.New()

	records := &stubRecords{
		saveIncome: func(rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
			assert.Equal(t, workspaceID, rec.WorkspaceID)
			assert.Equal(t, int64(4500), rec.OriginalAmount)
			rec.ID = recordID
			rec.Status = domain.StatusFinalized
			return &rec, nil
		},
	}

	body := `{"title":"Consulting","originalAmount":4500,"currency":"EUR"}`
	req := httptest.NewRequest("POST", "/api/v1/workspaces/"+workspaceID.String()+"/incomes", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newRouter(records).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), recordID.String())

	var got domain.FinancialRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusFinalized, got.Status)
}

func TestSaveExpenseUpdateReturnsOK(t *testing.T) {
	workspaceID := uuid.New()
	recordID := uuid.New()

	records := &stubRecords{
		saveExpense: func(rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
			assert.Equal(t, recordID, rec.ID)
			assert.Equal(t, int64(90), rec.PercentOnBusiness)
			return &rec, nil
		},
	}

	body := `{"id":"` + recordID.String() + `","title":"Laptop","originalAmount":450,"currency":"EUR","percentOnBusiness":90,"version":3}`
	req := httptest.NewRequest("POST", "/api/v1/workspaces/"+workspaceID.String()+"/expenses", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newRouter(records).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSaveValidation(t *testing.T) {
	workspaceID := uuid.New()
	records := &stubRecords{
		saveIncome: func(domain.FinancialRecord) (*domain.FinancialRecord, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}

	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"originalAmount":100,"currency":"EUR"}`},
		{"zero amount", `{"title":"x","originalAmount":0,"currency":"EUR"}`},
		{"missing currency", `{"title":"x","originalAmount":100}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/workspaces/"+workspaceID.String()+"/incomes", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			newRouter(records).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		})
	}
}

func TestSaveNotFoundMessagePassedThrough(t *testing.T) {
	workspaceID := uuid.New()
	invoiceID := uuid.New()

	records := &stubRecords{
		saveIncome: func(domain.FinancialRecord) (*domain.FinancialRecord, error) {
			return nil, &service.NotFoundError{Entity: "Invoice", ID: invoiceID}
		},
	}

	body := `{"title":"Settlement","originalAmount":100,"currency":"EUR"}`
	req := httptest.NewRequest("POST", "/api/v1/workspaces/"+workspaceID.String()+"/incomes", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newRouter(records).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invoice "+invoiceID.String()+" is not found")
}

func TestSaveVersionConflict(t *testing.T) {
	workspaceID := uuid.New()
	records := &stubRecords{
		saveIncome: func(domain.FinancialRecord) (*domain.FinancialRecord, error) {
			return nil, service.ErrVersionConflict
		},
	}

	body := `{"title":"x","originalAmount":100,"currency":"EUR"}`
	req := httptest.NewRequest("POST", "/api/v1/workspaces/"+workspaceID.String()+"/incomes", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newRouter(records).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetRecord(t *testing.T) {
	workspaceID := uuid.New()
	recordID := uuid.New()

	records := &stubRecords{
		record: func(ws, id uuid.UUID) (*domain.FinancialRecord, error) {
			assert.Equal(t, workspaceID, ws)
			assert.Equal(t, recordID, id)
			return &domain.FinancialRecord{ID: id, WorkspaceID: ws, Status: domain.StatusPendingConversion}, nil
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/workspaces/"+workspaceID.String()+"/records/"+recordID.String(), nil)
	rr := httptest.NewRecorder()
	newRouter(records).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), string(domain.StatusPendingConversion))
}
