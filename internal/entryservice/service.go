// Package entryservice manages business logic layer of manual income and expense entries.
package entryservice

import (
	"context"
	"strings"

	"github.com/go-petr/pet-finance/internal/domain"
)

// Repo provides data access layer interface needed by entry service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package entryservice
type Repo interface {
	Record(ctx context.Context, arg domain.CreateEntryParams) (domain.EntryResult, error)
	List(ctx context.Context, accountID, limit, offset int32) ([]domain.Entry, error)
}

// AccountGetter provides account lookup needed by entry service layer.
type AccountGetter interface {
	Get(ctx context.Context, id int32) (domain.Account, error)
}

// Service facilitates entry service layer logic.
type Service struct {
	repo     Repo
	accounts AccountGetter
}

// New returns entry service.
func New(er Repo, ag AccountGetter) *Service {
	return &Service{
		repo:     er,
		accounts: ag,
	}
}

func (s *Service) ownedAccount(ctx context.Context, owner string, id int32) (domain.Account, error) {
	acc, err := s.accounts.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if acc.Owner != owner {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return acc, nil
}

// Record applies a signed amount to the owner's account, negative amounts are expenses.
func (s *Service) Record(ctx context.Context, owner string, accountID int32, amount, notes string) (domain.EntryResult, error) {
	d, err := domain.ParseAmount(amount)
	if err != nil {
		return domain.EntryResult{}, err
	}

	acc, err := s.ownedAccount(ctx, owner, accountID)
	if err != nil {
		return domain.EntryResult{}, err
	}

	if acc.IsArchived {
		return domain.EntryResult{}, domain.ErrAccountArchived
	}

	if acc.Balance.Add(d).IsNegative() {
		return domain.EntryResult{}, domain.ErrInsufficientFunds
	}

	return s.repo.Record(ctx, domain.CreateEntryParams{
		AccountID: acc.ID,
		Amount:    d,
		Notes:     strings.TrimSpace(notes),
	})
}

// List returns entries of the owner's account, newest first.
func (s *Service) List(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.Entry, error) {
	if _, err := s.ownedAccount(ctx, owner, accountID); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, accountID, pageSize, (pageID-1)*pageSize)
}
