// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `id, owner, name, balance, currency, is_archived, hide_balance, created_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Name,
		&a.Balance,
		&a.Currency,
		&a.IsArchived,
		&a.HideBalance,
		&a.CreatedAt,
	)

	return a, err
}

func mapBalanceErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
		return domain.ErrInsufficientFunds
	}

	return errorspkg.ErrInternal
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING ` + accountColumns

// AddBalance atomically increments the account balance by amount and returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, amount decimal.Decimal, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, amount, id))
	if err != nil {
		l.Error().Err(err).Int32("account_id", id).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		return a, mapBalanceErr(err)
	}

	return a, nil
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = $1
WHERE id = $2 AND ($3::numeric IS NULL OR balance = $3::numeric)
RETURNING ` + accountColumns

// UpdateBalance overwrites the account balance with an absolute value.
//
// If arg.Expected is set, the write is conditional and fails with
// domain.ErrBalanceConflict when the stored balance differs.
func (r *RepoPGS) UpdateBalance(ctx context.Context, arg domain.UpdateBalanceParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	expected := decimal.NullDecimal{}
	if arg.Expected != nil {
		expected = decimal.NullDecimal{Decimal: *arg.Expected, Valid: true}
	}

	a, err := scanAccount(r.db.QueryRowContext(ctx, updateBalanceQuery, arg.Balance, arg.ID, expected))
	if err != nil {
		l.Error().Err(err).Int32("account_id", arg.ID).Send()

		if errors.Is(err, sql.ErrNoRows) {
			if arg.Expected == nil {
				return a, domain.ErrAccountNotFound
			}

			if _, getErr := r.Get(ctx, arg.ID); getErr != nil {
				return a, getErr
			}

			return a, domain.ErrBalanceConflict
		}

		return a, mapBalanceErr(err)
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (owner, name, balance, currency)
VALUES
    ($1, $2, $3, $4)
RETURNING ` + accountColumns

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.Owner, arg.Name, arg.Balance, arg.Currency)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_owner_fkey":
				return a, domain.ErrOwnerNotFound
			case "accounts_owner_name_key":
				return a, domain.ErrAccountNameExists
			case "accounts_balance_check":
				return a, domain.ErrInvalidAmount
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Int32("account_id", id).Send()
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE owner = $1 AND ($2 OR NOT is_archived)
ORDER BY id
LIMIT $3 OFFSET $4
`

// List returns the specified number of accounts for the given owner.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListAccountsParams) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.Owner, arg.IncludeArchived, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateFlagsQuery = `
UPDATE accounts
SET
    is_archived = COALESCE($2, is_archived),
    hide_balance = COALESCE($3, hide_balance)
WHERE id = $1
RETURNING ` + accountColumns

// UpdateFlags changes the archived and hide-balance flags of the account.
func (r *RepoPGS) UpdateFlags(ctx context.Context, arg domain.UpdateAccountFlagsParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	archived := sql.NullBool{}
	if arg.IsArchived != nil {
		archived = sql.NullBool{Bool: *arg.IsArchived, Valid: true}
	}

	hide := sql.NullBool{}
	if arg.HideBalance != nil {
		hide = sql.NullBool{Bool: *arg.HideBalance, Valid: true}
	}

	a, err := scanAccount(r.db.QueryRowContext(ctx, updateFlagsQuery, arg.ID, archived, hide))
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}
