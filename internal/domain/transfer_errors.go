package domain

import (
	"errors"
	"fmt"
)

// Transfer error codes exposed to API clients.
const (
	CodeNotAuthenticated  = "not_authenticated"
	CodeDuplicateRequest  = "duplicate_request"
	CodeSameAccount       = "same_account"
	CodeInvalidAmount     = "invalid_amount"
	CodeAccountNotFound   = "account_not_found"
	CodeCurrencyMismatch  = "currency_mismatch"
	CodeInsufficientFunds = "insufficient_funds"
	CodeWriteFailed       = "write_failed"
	CodeUnreconciled      = "unreconciled"
)

// Message categories shown to the end user.
const (
	CategoryInvalidInput        = "invalid_input"
	CategoryUnauthorized        = "unauthorized"
	CategoryNotFound            = "not_found"
	CategoryConflict            = "conflict"
	CategoryInsufficientFunds   = "insufficient_funds"
	CategoryTransientFailure    = "transient_failure"
	CategorySystemInconsistency = "system_inconsistency"
)

var (
	// ErrNotAuthenticated indicates that the transfer was requested without an identity.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrDuplicateRequest indicates that the idempotency key was already used.
	ErrDuplicateRequest = errors.New("duplicate transfer request")
	// ErrSameAccount indicates that source and destination are the same account.
	ErrSameAccount = errors.New("source and destination accounts must differ")
	// ErrInvalidAmount indicates that the amount is not a positive number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrCurrencyMismatch indicates that transfer accounts have different currencies.
	ErrCurrencyMismatch = errors.New("accounts currency mismatch")
	// ErrInsufficientFunds indicates that the source balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrWriteFailed indicates that a balance write failed and the transfer did not complete.
	ErrWriteFailed = errors.New("transfer did not complete")
	// ErrUnreconciled indicates that the source was debited, the destination was not
	// credited and restoring the source failed.
	ErrUnreconciled = errors.New("transfer left accounts unreconciled")
)

// ErrorClass groups transfer errors by who can act on them.
type ErrorClass int

// Transfer error classes.
const (
	ClassValidation ErrorClass = iota + 1
	ClassPersistence
	ClassUnreconciled
)

func (c ErrorClass) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassPersistence:
		return "persistence"
	case ClassUnreconciled:
		return "unreconciled"
	}

	return "unknown"
}

// TransferStep names the store call a persistence error happened in.
type TransferStep string

// Store calls of a transfer.
const (
	StepClaim      TransferStep = "claim"
	StepLookup     TransferStep = "lookup"
	StepDebit      TransferStep = "debit"
	StepCredit     TransferStep = "credit"
	StepCompensate TransferStep = "compensate"
)

// TransferError is returned by the transfer processor for every failed transfer.
//
// errors.Is matches both the sentinel (Kind) and the store error (Cause).
type TransferError struct {
	Code  string
	Class ErrorClass
	Step  TransferStep
	Kind  error
	Cause error
}

func (e *TransferError) Error() string {
	switch {
	case e.Step != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s step: %v", e.Kind, e.Step, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}

	return e.Kind.Error()
}

// Unwrap returns the sentinel and the underlying cause.
func (e *TransferError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Cause}
}

// Category returns the user facing message category.
func (e *TransferError) Category() string {
	switch e.Code {
	case CodeNotAuthenticated:
		return CategoryUnauthorized
	case CodeAccountNotFound:
		return CategoryNotFound
	case CodeDuplicateRequest:
		return CategoryConflict
	case CodeInsufficientFunds:
		return CategoryInsufficientFunds
	case CodeWriteFailed:
		return CategoryTransientFailure
	case CodeUnreconciled:
		return CategorySystemInconsistency
	}

	return CategoryInvalidInput
}

var validationCodes = map[error]string{
	ErrNotAuthenticated:  CodeNotAuthenticated,
	ErrDuplicateRequest:  CodeDuplicateRequest,
	ErrSameAccount:       CodeSameAccount,
	ErrInvalidAmount:     CodeInvalidAmount,
	ErrAccountNotFound:   CodeAccountNotFound,
	ErrCurrencyMismatch:  CodeCurrencyMismatch,
	ErrInsufficientFunds: CodeInsufficientFunds,
}

// NewValidationError wraps one of the transfer validation sentinels.
func NewValidationError(kind error) *TransferError {
	return &TransferError{
		Code:  validationCodes[kind],
		Class: ClassValidation,
		Kind:  kind,
	}
}

// NewPersistenceError reports a failed store call at the given step.
//
// Only StepCredit failures can have mutated state, and those are compensated before returning.
func NewPersistenceError(step TransferStep, cause error) *TransferError {
	return &TransferError{
		Code:  CodeWriteFailed,
		Class: ClassPersistence,
		Step:  step,
		Kind:  ErrWriteFailed,
		Cause: cause,
	}
}

// NewUnreconciledError reports a failed compensation.
func NewUnreconciledError(cause error) *TransferError {
	return &TransferError{
		Code:  CodeUnreconciled,
		Class: ClassUnreconciled,
		Step:  StepCompensate,
		Kind:  ErrUnreconciled,
		Cause: cause,
	}
}

// AsTransferError extracts a TransferError from err.
func AsTransferError(err error) (*TransferError, bool) {
	var te *TransferError
	if errors.As(err, &te) {
		return te, true
	}

	return nil, false
}
