// Package transferrepo manages the append-only transfer audit log.
package transferrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transfer RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const transferColumns = `id, owner, source_account_id, destination_account_id, amount, COALESCE(notes, ''), created_at`

func scanTransfer(row interface{ Scan(...any) error }) (domain.TransferRecord, error) {
	var t domain.TransferRecord

	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.SourceAccountID,
		&t.DestinationAccountID,
		&t.Amount,
		&t.Notes,
		&t.CreatedAt,
	)

	return t, err
}

const createQuery = `
INSERT INTO
    transfers (owner, source_account_id, destination_account_id, amount, notes)
VALUES
    ($1, $2, $3, $4, NULLIF($5, ''))
RETURNING ` + transferColumns

// Create appends the transfer record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransferRecordParams) (domain.TransferRecord, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Owner,
		arg.SourceAccountID,
		arg.DestinationAccountID,
		arg.Amount,
		arg.Notes,
	)

	t, err := scanTransfer(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "transfers_source_account_id_fkey", "transfers_destination_account_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transfers_amount_check":
				return t, domain.ErrInvalidAmount
			case "transfers_check":
				return t, domain.ErrSameAccount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT ` + transferColumns + `
FROM transfers
WHERE id = $1
`

// Get returns the transfer record with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.TransferRecord, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransfer(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return t, domain.ErrTransferNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT ` + transferColumns + `
FROM transfers
WHERE source_account_id = $1 OR destination_account_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// List returns transfer records touching the account, newest first.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.TransferRecord, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.TransferRecord{}

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
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
