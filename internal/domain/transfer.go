package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTransferNotFound indicates that the transfer record is not found.
var ErrTransferNotFound = errors.New("transfer not found")

// TransferRecord is the append-only audit entry of a completed transfer.
type TransferRecord struct {
	ID                   int64           `json:"id"`
	Owner                string          `json:"owner"`
	SourceAccountID      int32           `json:"source_account_id"`
	DestinationAccountID int32           `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"` // always positive
	Notes                string          `json:"notes,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// CreateTransferParams is the transfer request as submitted by the user.
type CreateTransferParams struct {
	SourceAccountID      int32  `json:"source_account_id"`
	DestinationAccountID int32  `json:"destination_account_id"`
	Amount               string `json:"amount"`
	Notes                string `json:"notes,omitempty"`
	IdempotencyKey       string `json:"-"`
}

// CreateTransferRecordParams is the input data to append a transfer record.
type CreateTransferRecordParams struct {
	Owner                string
	SourceAccountID      int32
	DestinationAccountID int32
	Amount               decimal.Decimal
	Notes                string
}

// ListTransfersParams is the input data to list transfers touching an account.
type ListTransfersParams struct {
	AccountID int32
	Limit     int32
	Offset    int32
}

// TransferResult is the outcome of a completed transfer.
type TransferResult struct {
	SourceBalance      decimal.Decimal `json:"source_balance"`
	DestinationBalance decimal.Decimal `json:"destination_balance"`
	Transfer           *TransferRecord `json:"transfer,omitempty"`
	AuditRecorded      bool            `json:"audit_recorded"`
}
