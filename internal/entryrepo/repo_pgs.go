// Package entryrepo manages repository layer of manual income and expense entries.
package entryrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-finance/internal/accountrepo"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns entry RepoPGS bound to an existing transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

// NewRepoPGS returns entry RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    entries (account_id, amount, notes)
VALUES
    ($1, $2, NULLIF($3, ''))
RETURNING id, account_id, amount, COALESCE(notes, ''), created_at
`

// Create creates the entry and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.AccountID, arg.Amount, arg.Notes)

	var e domain.Entry

	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.Amount,
		&e.Notes,
		&e.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "entries_account_id_fkey" {
			return e, domain.ErrAccountNotFound
		}

		return e, errorspkg.ErrInternal
	}

	return e, nil
}

const listQuery = `
SELECT id, account_id, amount, COALESCE(notes, ''), created_at
FROM entries
WHERE account_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// List returns the specified number of entries for the given account, newest first.
func (r *RepoPGS) List(ctx context.Context, accountID, limit, offset int32) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, accountID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.Amount,
			&e.Notes,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
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

// Record stores the entry and applies it to the account balance within a single db transaction.
// A repo built with NewTxRepoPGS runs both statements in the transaction it is bound to.
//
// The balance is changed with an atomic increment, so concurrent entries never overwrite each other.
func (r *RepoPGS) Record(ctx context.Context, arg domain.CreateEntryParams) (domain.EntryResult, error) {
	if r.conn == nil {
		return record(ctx, r.db, arg)
	}

	var (
		result  domain.EntryResult
		stepErr error
	)

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		result, stepErr = record(ctx, tx, arg)
		return stepErr
	})
	if err != nil {
		if stepErr != nil {
			return domain.EntryResult{}, stepErr
		}

		zerolog.Ctx(ctx).Error().Err(err).Send()

		return domain.EntryResult{}, errorspkg.ErrInternal
	}

	return result, nil
}

func record(ctx context.Context, db dbpkg.SQLInterface, arg domain.CreateEntryParams) (domain.EntryResult, error) {
	entry, err := NewTxRepoPGS(db).Create(ctx, arg)
	if err != nil {
		return domain.EntryResult{}, err
	}

	account, err := accountrepo.NewRepoPGS(db).AddBalance(ctx, arg.Amount, arg.AccountID)
	if err != nil {
		return domain.EntryResult{}, err
	}

	return domain.EntryResult{Entry: entry, Account: account}, nil
}
