package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallieo/bookkeeper/internal/domain"
	"github.com/tallieo/bookkeeper/internal/reconcile"
)

// ErrVersionConflict is returned by the record store when an update carries a
// stale version, i.e. a concurrent save won.
var ErrVersionConflict = errors.New("record version conflict")

// Clock supplies the timestamp stamped into timeRecorded on every save.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Collaborator stores. Lookups scoped by workspace return domain.ErrNotFound
// both when the entity is absent and when it belongs to another workspace.
type (
	Workspaces interface {
		Workspace(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	}

	Taxes interface {
		Tax(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Tax, error)
	}

	Invoices interface {
		Invoice(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Invoice, error)
	}

	Attachments interface {
		// MissingAttachment reports the first of ids not present in the
		// workspace, or nil when all exist.
		MissingAttachment(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) (*uuid.UUID, error)
	}

	Records interface {
		// Persist writes the reconciled record and, when paid is set, the
		// linked invoice's paid date within the same transaction. A failed
		// invoice update aborts the whole write.
		Persist(ctx context.Context, rec domain.FinancialRecord, paid *InvoicePaid) (domain.FinancialRecord, error)
		Record(ctx context.Context, workspaceID, id uuid.UUID) (*domain.FinancialRecord, error)
	}
)

// InvoicePaid is the side effect of saving an income that settles an invoice.
type InvoicePaid struct {
	InvoiceID uuid.UUID
	PaidOn    time.Time
}

// RecordService orchestrates a save: resolve collaborators, reconcile,
// persist. One instance serves both record kinds.
type RecordService struct {
	workspaces  Workspaces
	taxes       Taxes
	invoices    Invoices
	attachments Attachments
	records     Records
	clock       Clock
}

func NewRecordService(w Workspaces, t Taxes, i Invoices, a Attachments, r Records, clock Clock) *RecordService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RecordService{workspaces: w, taxes: t, invoices: i, attachments: a, records: r, clock: clock}
}

// SaveIncome reconciles and persists an incoming-funds record. Incomes have
// no partial business use; a linked invoice, if any, is marked paid on the
// record's received date.
func (s *RecordService) SaveIncome(ctx context.Context, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	rec.Kind = domain.KindIncome
	rec.PercentOnBusiness = 100
	return s.save(ctx, rec)
}

// SaveExpense reconciles and persists an outgoing-funds record. Expenses
// cannot link invoices.
func (s *RecordService) SaveExpense(ctx context.Context, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	rec.Kind = domain.KindExpense
	rec.LinkedInvoiceID = nil
	return s.save(ctx, rec)
}

// Record fetches a persisted record scoped to its workspace.
func (s *RecordService) Record(ctx context.Context, workspaceID, id uuid.UUID) (*domain.FinancialRecord, error) {
	rec, err := s.records.Record(ctx, workspaceID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, notFound("Record", id)
	}
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	return rec, nil
}

func (s *RecordService) save(ctx context.Context, rec domain.FinancialRecord) (*domain.FinancialRecord, error) {
	ws, err := s.workspaces.Workspace(ctx, rec.WorkspaceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, notFound("Workspace", rec.WorkspaceID)
	}
	if err != nil {
		return nil, fmt.Errorf("workspace lookup failed: %w", err)
	}

	var resolvedTax *domain.ResolvedTax
	if rec.TaxID != nil {
		tax, err := s.taxes.Tax(ctx, rec.WorkspaceID, *rec.TaxID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("Tax", *rec.TaxID)
		}
		if err != nil {
			return nil, fmt.Errorf("tax lookup failed: %w", err)
		}
		resolvedTax = &domain.ResolvedTax{RateInBps: tax.RateInBps}
	}

	if len(rec.AttachmentIDs) > 0 {
		missing, err := s.attachments.MissingAttachment(ctx, rec.WorkspaceID, rec.AttachmentIDs)
		if err != nil {
			return nil, fmt.Errorf("attachment lookup failed: %w", err)
		}
		if missing != nil {
			return nil, notFound("Attachment", *missing)
		}
	}

	var paid *InvoicePaid
	if rec.Kind == domain.KindIncome && rec.LinkedInvoiceID != nil {
		inv, err := s.invoices.Invoice(ctx, rec.WorkspaceID, *rec.LinkedInvoiceID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("Invoice", *rec.LinkedInvoiceID)
		}
		if err != nil {
			return nil, fmt.Errorf("invoice lookup failed: %w", err)
		}
		paid = &InvoicePaid{InvoiceID: inv.ID, PaidOn: rec.DateReceived}
	}

	rec.TimeRecorded = s.clock.Now()
	rec = reconcile.Reconcile(rec, ws.DefaultCurrency, resolvedTax)

	saved, err := s.records.Persist(ctx, rec, paid)
	if err != nil {
		return nil, fmt.Errorf("record persist failed: %w", err)
	}
	return &saved, nil
}
