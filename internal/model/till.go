package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Till movement kinds.
const (
	MovementCashIn    = "cash_in"
	MovementCashOut   = "cash_out"
	MovementSummarize = "summarize"
	MovementCloseTill = "close_till"
)

// TillMovement is a till-level operation recorded in the journal.
type TillMovement struct {
	ID        uuid.UUID           `json:"id" db:"id"`
	Kind      string              `json:"kind" db:"kind"`
	Value     decimal.NullDecimal `json:"value" db:"value"`
	CreatedAt time.Time           `json:"createdAt" db:"created_at"`
}

// CashRequest is the payload for adding or removing till cash.
type CashRequest struct {
	Value decimal.Decimal `json:"value"`
}
