// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNameExists indicates that the owner already has an account with the given name.
	ErrAccountNameExists = errors.New("account name already exists")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrBalanceConflict indicates that a conditional balance write lost a race.
	ErrBalanceConflict = errors.New("account balance changed concurrently")
	// ErrAccountArchived indicates that the account is archived and cannot be changed.
	ErrAccountArchived = errors.New("account is archived")
	// ErrInvalidAccountName indicates that the account name is blank.
	ErrInvalidAccountName = errors.New("account name cannot be empty")
	// ErrUnsupportedCurrency indicates that the currency is not supported.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Account holds a user's named balance.
type Account struct {
	ID          int32           `json:"id"`
	Owner       string          `json:"owner"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	IsArchived  bool            `json:"is_archived"`
	HideBalance bool            `json:"hide_balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	Owner    string
	Name     string
	Balance  decimal.Decimal
	Currency string
}

// ListAccountsParams is the input data to list owner accounts.
type ListAccountsParams struct {
	Owner           string
	IncludeArchived bool
	Limit           int32
	Offset          int32
}

// UpdateAccountFlagsParams holds account flags to change, nil fields are left untouched.
type UpdateAccountFlagsParams struct {
	ID          int32
	IsArchived  *bool
	HideBalance *bool
}

// UpdateBalanceParams sets the absolute balance of an account.
//
// When Expected is set the write only succeeds if the stored balance still equals it.
type UpdateBalanceParams struct {
	ID       int32
	Balance  decimal.Decimal
	Expected *decimal.Decimal
}
