package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the accounting scope every record belongs to. Its default
// currency is the one all derived amounts are expressed in.
type Workspace struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DefaultCurrency string    `json:"defaultCurrency"`
}

// Tax is a workspace-scoped tax definition. Rates are in basis points
// (1900 = 19%).
type Tax struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Name        string    `json:"name"`
	RateInBps   int64     `json:"rateInBps"`
}

// ResolvedTax is the slice of Tax the reconciliation engine needs. A nil
// ResolvedTax means no tax applies to the record.
type ResolvedTax struct {
	RateInBps int64
}

// Invoice is the outbound invoice an income record may settle.
type Invoice struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspaceId"`
	Number      string     `json:"number"`
	Total       int64      `json:"total"`
	Currency    string     `json:"currency"`
	PaidOn      *time.Time `json:"paidOn,omitempty"`
}
