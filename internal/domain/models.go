package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is the canonical "row does not exist" error returned by the
// stores. The service layer wraps it with the entity kind and id.
var ErrNotFound = errors.New("not found")

// RecordKind distinguishes incoming funds from outgoing funds. Both kinds
// share the FinancialRecord shape; only expenses carry a meaningful
// percent-on-business, and only incomes may link an invoice.
type RecordKind string

const (
	KindIncome  RecordKind = "income"
	KindExpense RecordKind = "expense"
)

// Status is the derived lifecycle state of a record. It is recomputed from
// scratch on every save and may regress from FINALIZED back to a pending
// state when a previously supplied converted amount is cleared.
type Status string

const (
	StatusFinalized                    Status = "FINALIZED"
	StatusPendingConversion            Status = "PENDING_CONVERSION"
	StatusPendingConversionForTaxation Status = "PENDING_CONVERSION_FOR_TAXATION_PURPOSES"
)

// AmountPair expresses one amount two ways: converted into the workspace
// default currency, and adjusted for business use and tax basis. Adjusted is
// always derived; it is nil exactly when Original is nil.
type AmountPair struct {
	Original *int64 `json:"originalAmountInDefaultCurrency"`
	Adjusted *int64 `json:"adjustedAmountInDefaultCurrency"`
}

// FinancialRecord is a single income or expense entry. All amounts are in
// minor units (cents). Converted/taxable originals are supplied by the caller
// once the external conversion is known; the adjusted amounts, tax fields and
// status are owned by the reconciliation engine.
type FinancialRecord struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspaceId"`
	Kind        RecordKind `json:"kind"`
	Title       string     `json:"title"`

	OriginalAmount int64  `json:"originalAmount"`
	Currency       string `json:"currency"`

	ConvertedAmounts AmountPair `json:"convertedAmounts"`
	TaxableAmounts   AmountPair `json:"taxableAmounts"`

	UseDifferentExchangeRateForTaxPurposes bool `json:"useDifferentExchangeRateForTaxPurposes"`

	// PercentOnBusiness applies to expenses only; incomes are always fully
	// attributed to the business and the engine treats them as 100.
	PercentOnBusiness int64 `json:"percentOnBusiness"`

	TaxID *uuid.UUID `json:"taxId,omitempty"`

	// Derived tax fields. Populated only on FINALIZED records with a tax.
	TaxRateInBps *int64 `json:"generalTaxRateInBps"`
	TaxAmount    *int64 `json:"generalTaxAmount"`

	Status Status `json:"status"`

	// LinkedInvoiceID applies to incomes only. Saving such a record marks the
	// invoice paid on DateReceived.
	LinkedInvoiceID *uuid.UUID  `json:"linkedInvoiceId,omitempty"`
	AttachmentIDs   []uuid.UUID `json:"attachmentIds,omitempty"`

	DateReceived time.Time `json:"dateReceived"`
	TimeRecorded time.Time `json:"timeRecorded"`

	// Version guards concurrent edits of the same record; the store bumps it
	// on every successful update.
	Version int64 `json:"version"`
}
