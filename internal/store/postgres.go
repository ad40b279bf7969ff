package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallieo/bookkeeper/internal/domain"
	"github.com/tallieo/bookkeeper/internal/service"
)

// Store implements the service collaborator interfaces on Postgres.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{db: pool}, nil
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) Workspace(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := s.db.QueryRow(ctx,
		"SELECT id, name, default_currency FROM workspaces WHERE id = $1",
		id).Scan(&ws.ID, &ws.Name, &ws.DefaultCurrency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *Store) Tax(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Tax, error) {
	var tax domain.Tax
	err := s.db.QueryRow(ctx,
		"SELECT id, workspace_id, name, rate_bps FROM taxes WHERE id = $1 AND workspace_id = $2",
		id, workspaceID).Scan(&tax.ID, &tax.WorkspaceID, &tax.Name, &tax.RateInBps)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tax, nil
}

func (s *Store) Invoice(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := s.db.QueryRow(ctx,
		"SELECT id, workspace_id, number, total, currency, paid_on FROM invoices WHERE id = $1 AND workspace_id = $2",
		id, workspaceID).Scan(&inv.ID, &inv.WorkspaceID, &inv.Number, &inv.Total, &inv.Currency, &inv.PaidOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// MissingAttachment reports the first id not present in the workspace.
func (s *Store) MissingAttachment(ctx context.Context, workspaceID uuid.UUID, ids []uuid.UUID) (*uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id FROM attachments WHERE workspace_id = $1 AND id = ANY($2)",
		workspaceID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if !found[id] {
			missing := id
			return &missing, nil
		}
	}
	return nil, nil
}

const recordColumns = `id, workspace_id, kind, title, original_amount, currency,
	converted_original, converted_adjusted, taxable_original, taxable_adjusted,
	different_tax_rate, percent_on_business, tax_id, tax_rate_bps, tax_amount,
	status, linked_invoice_id, attachment_ids, date_received, time_recorded, version`

func (s *Store) Record(ctx context.Context, workspaceID, id uuid.UUID) (*domain.FinancialRecord, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+recordColumns+" FROM financial_records WHERE id = $1 AND workspace_id = $2",
		id, workspaceID)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Persist writes the record and, when paid is set, the invoice paid date in a
// single transaction. A stale version on update returns
// service.ErrVersionConflict.
func (s *Store) Persist(ctx context.Context, rec domain.FinancialRecord, paid *service.InvoicePaid) (domain.FinancialRecord, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.FinancialRecord{}, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
		rec.Version = 1
		_, err = tx.Exec(ctx,
			`INSERT INTO financial_records (`+recordColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
			rec.ID, rec.WorkspaceID, rec.Kind, rec.Title, rec.OriginalAmount, rec.Currency,
			rec.ConvertedAmounts.Original, rec.ConvertedAmounts.Adjusted,
			rec.TaxableAmounts.Original, rec.TaxableAmounts.Adjusted,
			rec.UseDifferentExchangeRateForTaxPurposes, rec.PercentOnBusiness,
			rec.TaxID, rec.TaxRateInBps, rec.TaxAmount,
			rec.Status, rec.LinkedInvoiceID, rec.AttachmentIDs,
			rec.DateReceived, rec.TimeRecorded, rec.Version)
		if err != nil {
			return domain.FinancialRecord{}, fmt.Errorf("record insert failed: %w", err)
		}
	} else {
		tag, err := tx.Exec(ctx,
			`UPDATE financial_records SET
				title = $3, original_amount = $4, currency = $5,
				converted_original = $6, converted_adjusted = $7,
				taxable_original = $8, taxable_adjusted = $9,
				different_tax_rate = $10, percent_on_business = $11,
				tax_id = $12, tax_rate_bps = $13, tax_amount = $14,
				status = $15, linked_invoice_id = $16, attachment_ids = $17,
				date_received = $18, time_recorded = $19, version = version + 1
			 WHERE id = $1 AND workspace_id = $2 AND version = $20`,
			rec.ID, rec.WorkspaceID, rec.Title, rec.OriginalAmount, rec.Currency,
			rec.ConvertedAmounts.Original, rec.ConvertedAmounts.Adjusted,
			rec.TaxableAmounts.Original, rec.TaxableAmounts.Adjusted,
			rec.UseDifferentExchangeRateForTaxPurposes, rec.PercentOnBusiness,
			rec.TaxID, rec.TaxRateInBps, rec.TaxAmount,
			rec.Status, rec.LinkedInvoiceID, rec.AttachmentIDs,
			rec.DateReceived, rec.TimeRecorded, rec.Version)
		if err != nil {
			return domain.FinancialRecord{}, fmt.Errorf("record update failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM financial_records WHERE id = $1 AND workspace_id = $2)",
				rec.ID, rec.WorkspaceID).Scan(&exists); err != nil {
				return domain.FinancialRecord{}, err
			}
			if exists {
				return domain.FinancialRecord{}, service.ErrVersionConflict
			}
			return domain.FinancialRecord{}, domain.ErrNotFound
		}
		rec.Version++
	}

	if paid != nil {
		tag, err := tx.Exec(ctx,
			"UPDATE invoices SET paid_on = $1 WHERE id = $2 AND workspace_id = $3",
			paid.PaidOn, paid.InvoiceID, rec.WorkspaceID)
		if err != nil {
			return domain.FinancialRecord{}, fmt.Errorf("invoice paid date update failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.FinancialRecord{}, fmt.Errorf("invoice paid date update: %w", domain.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.FinancialRecord{}, fmt.Errorf("tx commit failed: %w", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*domain.FinancialRecord, error) {
	var rec domain.FinancialRecord
	err := row.Scan(
		&rec.ID, &rec.WorkspaceID, &rec.Kind, &rec.Title, &rec.OriginalAmount, &rec.Currency,
		&rec.ConvertedAmounts.Original, &rec.ConvertedAmounts.Adjusted,
		&rec.TaxableAmounts.Original, &rec.TaxableAmounts.Adjusted,
		&rec.UseDifferentExchangeRateForTaxPurposes, &rec.PercentOnBusiness,
		&rec.TaxID, &rec.TaxRateInBps, &rec.TaxAmount,
		&rec.Status, &rec.LinkedInvoiceID, &rec.AttachmentIDs,
		&rec.DateReceived, &rec.TimeRecorded, &rec.Version)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
