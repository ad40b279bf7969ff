package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallieo/bookkeeper/internal/domain"
)

// SaveRecordRequest is the payload from the client for both record kinds.
// Converted/taxable amounts are the externally converted values the client
// already knows; leaving them out means conversion is still pending.
type SaveRecordRequest struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	Title          string     `json:"title"`
	OriginalAmount int64      `json:"originalAmount"`
	Currency       string     `json:"currency"`

	ConvertedAmount *int64 `json:"convertedAmountInDefaultCurrency,omitempty"`
	TaxableAmount   *int64 `json:"taxableAmountInDefaultCurrency,omitempty"`

	UseDifferentExchangeRateForTaxPurposes bool `json:"useDifferentExchangeRateForTaxPurposes"`

	// PercentOnBusiness is accepted on expenses only; nil defaults to 100.
	PercentOnBusiness *int64 `json:"percentOnBusiness,omitempty"`

	TaxID           *uuid.UUID  `json:"taxId,omitempty"`
	LinkedInvoiceID *uuid.UUID  `json:"linkedInvoiceId,omitempty"`
	AttachmentIDs   []uuid.UUID `json:"attachmentIds,omitempty"`

	DateReceived time.Time `json:"dateReceived"`
	Version      int64     `json:"version,omitempty"`
}

// Validate covers the request-level checks the reconciliation engine assumes
// have already happened.
func (r SaveRecordRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.OriginalAmount <= 0 {
		return fmt.Errorf("originalAmount must be positive")
	}
	if r.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if r.PercentOnBusiness != nil && (*r.PercentOnBusiness < 0 || *r.PercentOnBusiness > 100) {
		return fmt.Errorf("percentOnBusiness must be between 0 and 100")
	}
	return nil
}

// ToDomain maps the request onto a record for the given workspace. Derived
// fields are left zero; the service owns them.
func (r SaveRecordRequest) ToDomain(workspaceID uuid.UUID) domain.FinancialRecord {
	rec := domain.FinancialRecord{
		WorkspaceID:      workspaceID,
		Title:            r.Title,
		OriginalAmount:   r.OriginalAmount,
		Currency:         r.Currency,
		ConvertedAmounts: domain.AmountPair{Original: r.ConvertedAmount},
		TaxableAmounts:   domain.AmountPair{Original: r.TaxableAmount},

		UseDifferentExchangeRateForTaxPurposes: r.UseDifferentExchangeRateForTaxPurposes,

		PercentOnBusiness: 100,
		TaxID:             r.TaxID,
		LinkedInvoiceID:   r.LinkedInvoiceID,
		AttachmentIDs:     r.AttachmentIDs,
		DateReceived:      r.DateReceived,
		Version:           r.Version,
	}
	if r.ID != nil {
		rec.ID = *r.ID
	}
	if r.PercentOnBusiness != nil {
		rec.PercentOnBusiness = *r.PercentOnBusiness
	}
	return rec
}

// ErrorResponse is the canonical error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
