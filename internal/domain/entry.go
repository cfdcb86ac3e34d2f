package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry holds a manual balance change of an account.
type Entry struct {
	ID        int64           `json:"id"`
	AccountID int32           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"` // negative for expenses
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateEntryParams is the input data to record an entry.
type CreateEntryParams struct {
	AccountID int32
	Amount    decimal.Decimal
	Notes     string
}

// EntryResult is the result of recording an entry.
type EntryResult struct {
	Entry   Entry   `json:"entry"`
	Account Account `json:"account"`
}
