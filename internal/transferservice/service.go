// Package transferservice manages business logic layer of transfers.
//
// A transfer is two independent absolute balance writes: the source is debited
// first, then the destination is credited. If the credit fails, the source is
// written back to the balance it had before the transfer. An audit record is
// appended last and its failure never undoes a completed transfer.
package transferservice

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/telemetry"
)

// AccountRepo provides account store interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type AccountRepo interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
	UpdateBalance(ctx context.Context, arg domain.UpdateBalanceParams) (domain.Account, error)
}

// AuditRepo provides transfer record store interface needed by transfer service layer.
type AuditRepo interface {
	Create(ctx context.Context, arg domain.CreateTransferRecordParams) (domain.TransferRecord, error)
	List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.TransferRecord, error)
}

// KeyGuard claims per-request idempotency keys.
type KeyGuard interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

// Config tunes the transfer processor.
type Config struct {
	// ConditionalWrites makes every balance write conditional on the balance read before it.
	ConditionalWrites bool
	// CompensationMaxRetries is the number of retries after the first failed compensating write.
	CompensationMaxRetries uint64
	// CompensationRetryInterval is the initial delay between compensating write retries.
	CompensationRetryInterval time.Duration
}

// Service facilitates transfer service layer logic.
type Service struct {
	accounts AccountRepo
	audit    AuditRepo
	guard    KeyGuard
	config   Config
}

// New returns transfer service. guard may be nil, idempotency keys are then ignored.
func New(ar AccountRepo, tr AuditRepo, guard KeyGuard, config Config) *Service {
	return &Service{
		accounts: ar,
		audit:    tr,
		guard:    guard,
		config:   config,
	}
}

type plan struct {
	source      domain.Account
	destination domain.Account
	amount      decimal.Decimal
}

// ParseAmount parses a user supplied transfer amount, which must be positive.
func ParseAmount(amount string) (decimal.Decimal, error) {
	d, err := domain.ParseAmount(amount)
	if err != nil {
		return decimal.Zero, err
	}

	if !d.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	return d, nil
}

func (s *Service) ownedAccount(ctx context.Context, owner string, id int32) (domain.Account, error) {
	a, err := s.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return a, domain.NewValidationError(domain.ErrAccountNotFound)
		}

		return a, domain.NewPersistenceError(domain.StepLookup, err)
	}

	if a.Owner != owner || a.IsArchived {
		return a, domain.NewValidationError(domain.ErrAccountNotFound)
	}

	return a, nil
}

func (s *Service) validRequest(ctx context.Context, owner string, arg domain.CreateTransferParams) (plan, error) {
	var p plan

	if arg.SourceAccountID == arg.DestinationAccountID {
		return p, domain.NewValidationError(domain.ErrSameAccount)
	}

	amount, err := ParseAmount(arg.Amount)
	if err != nil {
		return p, domain.NewValidationError(domain.ErrInvalidAmount)
	}

	source, err := s.ownedAccount(ctx, owner, arg.SourceAccountID)
	if err != nil {
		return p, err
	}

	destination, err := s.ownedAccount(ctx, owner, arg.DestinationAccountID)
	if err != nil {
		return p, err
	}

	if source.Currency != destination.Currency {
		return p, domain.NewValidationError(domain.ErrCurrencyMismatch)
	}

	if source.Balance.LessThan(amount) {
		return p, domain.NewValidationError(domain.ErrInsufficientFunds)
	}

	return plan{source: source, destination: destination, amount: amount}, nil
}

func (s *Service) balanceParams(id int32, balance, read decimal.Decimal) domain.UpdateBalanceParams {
	arg := domain.UpdateBalanceParams{ID: id, Balance: balance}

	if s.config.ConditionalWrites {
		expected := read
		arg.Expected = &expected
	}

	return arg
}

// Transfer validates the request and moves the amount from the source to the destination account.
//
// Once the source is debited the transfer runs to completion (credit or compensation)
// even if ctx is cancelled.
func (s *Service) Transfer(ctx context.Context, owner string, arg domain.CreateTransferParams) (result domain.TransferResult, err error) {
	l := zerolog.Ctx(ctx).With().
		Str("owner", owner).
		Int32("source_account_id", arg.SourceAccountID).
		Int32("destination_account_id", arg.DestinationAccountID).
		Logger()
	ctx = l.WithContext(ctx)

	defer func() {
		telemetry.TransfersTotal.WithLabelValues(outcome(err)).Inc()
	}()

	if owner == "" {
		return result, domain.NewValidationError(domain.ErrNotAuthenticated)
	}

	if arg.IdempotencyKey != "" && s.guard != nil {
		if err := s.claim(ctx, owner, arg.IdempotencyKey); err != nil {
			return result, err
		}

		defer func() {
			if releasable(err) {
				s.release(ctx, owner, arg.IdempotencyKey)
			}
		}()
	}

	p, err := s.validRequest(ctx, owner, arg)
	if err != nil {
		l.Info().Err(err).Send()
		return result, err
	}

	sourceAfter := p.source.Balance.Sub(p.amount)
	destinationAfter := p.destination.Balance.Add(p.amount)

	debited, err := s.accounts.UpdateBalance(ctx, s.balanceParams(p.source.ID, sourceAfter, p.source.Balance))
	if err != nil {
		l.Error().Err(err).Msg("transfer debit failed")
		return result, domain.NewPersistenceError(domain.StepDebit, err)
	}

	ctx = context.WithoutCancel(ctx)

	credited, err := s.accounts.UpdateBalance(ctx, s.balanceParams(p.destination.ID, destinationAfter, p.destination.Balance))
	if err != nil {
		return result, s.compensate(ctx, p.source, sourceAfter, err)
	}

	result.SourceBalance = debited.Balance
	result.DestinationBalance = credited.Balance

	record, err := s.audit.Create(ctx, domain.CreateTransferRecordParams{
		Owner:                owner,
		SourceAccountID:      p.source.ID,
		DestinationAccountID: p.destination.ID,
		Amount:               p.amount,
		Notes:                arg.Notes,
	})
	if err != nil {
		telemetry.TransferAuditFailuresTotal.Inc()
		l.Error().Err(err).
			Str("amount", p.amount.String()).
			Msg("transfer completed but its audit record was not appended")

		return result, nil
	}

	result.Transfer = &record
	result.AuditRecorded = true

	return result, nil
}

// compensate writes the source balance back after a failed credit.
func (s *Service) compensate(ctx context.Context, source domain.Account, sourceAfter decimal.Decimal, creditErr error) error {
	l := zerolog.Ctx(ctx)

	l.Warn().Err(creditErr).Msg("transfer credit failed, restoring source balance")

	restore := func() error {
		_, err := s.accounts.UpdateBalance(ctx, s.balanceParams(source.ID, source.Balance, sourceAfter))
		if errors.Is(err, domain.ErrBalanceConflict) || errors.Is(err, domain.ErrAccountNotFound) {
			return backoff.Permanent(err)
		}

		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.CompensationRetryInterval
	policy.MaxElapsedTime = 0

	err := backoff.Retry(restore, backoff.WithContext(backoff.WithMaxRetries(policy, s.config.CompensationMaxRetries), ctx))
	if err != nil {
		telemetry.TransferCompensationsTotal.WithLabelValues("failed").Inc()
		telemetry.TransfersUnreconciledTotal.Inc()
		l.Error().
			Str("alert", domain.CodeUnreconciled).
			AnErr("credit_error", creditErr).
			Err(err).
			Str("source_balance_before", source.Balance.String()).
			Str("source_balance_written", sourceAfter.String()).
			Msg("transfer compensation failed, manual reconciliation required")

		return domain.NewUnreconciledError(errors.Join(creditErr, err))
	}

	telemetry.TransferCompensationsTotal.WithLabelValues("restored").Inc()

	return domain.NewPersistenceError(domain.StepCredit, creditErr)
}

func (s *Service) claim(ctx context.Context, owner, key string) error {
	claimed, err := s.guard.Claim(ctx, owner, key)
	if err != nil {
		return domain.NewPersistenceError(domain.StepClaim, err)
	}

	if !claimed {
		zerolog.Ctx(ctx).Info().Str("idempotency_key", key).Msg("duplicate transfer request")
		return domain.NewValidationError(domain.ErrDuplicateRequest)
	}

	return nil
}

func (s *Service) release(ctx context.Context, owner, key string) {
	if err := s.guard.Release(context.WithoutCancel(ctx), owner, key); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("idempotency_key", key).Msg("cannot release idempotency key")
	}
}

// releasable reports whether err left no trace, so the same request may be sent again.
func releasable(err error) bool {
	te, ok := domain.AsTransferError(err)
	if !ok {
		return false
	}

	if te.Class == domain.ClassValidation {
		return te.Code != domain.CodeDuplicateRequest
	}

	return te.Step == domain.StepLookup || te.Step == domain.StepDebit
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}

	if te, ok := domain.AsTransferError(err); ok {
		return te.Code
	}

	return "error"
}

// List returns transfer records touching the owner's account.
func (s *Service) List(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.TransferRecord, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if a.Owner != owner {
		return nil, domain.ErrAccountNotFound
	}

	arg := domain.ListTransfersParams{
		AccountID: accountID,
		Limit:     pageSize,
		Offset:    (pageID - 1) * pageSize,
	}

	return s.audit.List(ctx, arg)
}
