// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"strings"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
	"github.com/rs/zerolog"
)

// candidatesLimit caps the number of accounts offered as transfer destinations.
const candidatesLimit = 100

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int32) (domain.Account, error)
	List(ctx context.Context, arg domain.ListAccountsParams) ([]domain.Account, error)
	UpdateFlags(ctx context.Context, arg domain.UpdateAccountFlagsParams) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create creates and returns account for the given owner.
func (s *Service) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	arg.Name = strings.TrimSpace(arg.Name)

	if arg.Name == "" {
		return domain.Account{}, domain.ErrInvalidAccountName
	}

	if !currencypkg.IsSupportedCurrency(arg.Currency) {
		return domain.Account{}, domain.ErrUnsupportedCurrency
	}

	if arg.Balance.IsNegative() {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	return s.repo.Create(ctx, arg)
}

// Get returns the owner's account with the given id.
//
// Accounts of other users are reported as not found.
func (s *Service) Get(ctx context.Context, owner string, id int32) (domain.Account, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if acc.Owner != owner {
		zerolog.Ctx(ctx).Warn().Int32("account_id", id).Str("owner", owner).Msg("account owner mismatch")
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return acc, nil
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string, includeArchived bool, pageSize, pageID int32) ([]domain.Account, error) {
	return s.repo.List(ctx, domain.ListAccountsParams{
		Owner:           owner,
		IncludeArchived: includeArchived,
		Limit:           pageSize,
		Offset:          (pageID - 1) * pageSize,
	})
}

// Candidates returns the owner's accounts that can take part in a transfer.
//
// When sourceID is set, the source itself and accounts in another currency are left out.
func (s *Service) Candidates(ctx context.Context, owner string, sourceID int32) ([]domain.Account, error) {
	var source domain.Account

	if sourceID != 0 {
		var err error

		source, err = s.Get(ctx, owner, sourceID)
		if err != nil {
			return nil, err
		}

		if source.IsArchived {
			return nil, domain.ErrAccountArchived
		}
	}

	accounts, err := s.repo.List(ctx, domain.ListAccountsParams{
		Owner: owner,
		Limit: candidatesLimit,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Account, 0, len(accounts))

	for _, a := range accounts {
		if a.IsArchived {
			continue
		}

		if sourceID != 0 && (a.ID == source.ID || a.Currency != source.Currency) {
			continue
		}

		candidates = append(candidates, a)
	}

	return candidates, nil
}

// UpdateFlags archives, unarchives or hides the balance of the owner's account.
func (s *Service) UpdateFlags(ctx context.Context, owner string, arg domain.UpdateAccountFlagsParams) (domain.Account, error) {
	acc, err := s.Get(ctx, owner, arg.ID)
	if err != nil {
		return domain.Account{}, err
	}

	if arg.IsArchived == nil && arg.HideBalance == nil {
		return acc, nil
	}

	return s.repo.UpdateFlags(ctx, arg)
}
