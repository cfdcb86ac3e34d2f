// Package helpers seeds the database for integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-finance/internal/accountrepo"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/userrepo"
	"github.com/go-petr/pet-finance/pkg/dbpkg"
	"github.com/go-petr/pet-finance/pkg/passpkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
)

// SeedPassword is the plain password of every seeded user.
const SeedPassword = "secret123"

// SeedUser creates a user with a random username and SeedPassword.
func SeedUser(t *testing.T, db dbpkg.SQLInterface) domain.User {
	t.Helper()

	hashed, err := passpkg.Hash(SeedPassword)
	if err != nil {
		t.Fatalf("passpkg.Hash() returned error: %v", err)
	}

	arg := domain.CreateUserParams{
		Username:       randompkg.Owner(),
		HashedPassword: hashed,
		FullName:       randompkg.Owner(),
		Email:          randompkg.Email(),
	}

	user, err := userrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("userrepo.Create(%+v) returned error: %v", arg, err)
	}

	return user
}

// SeedAccount creates an account of owner with the given balance and currency.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, owner string, balance decimal.Decimal, currency string) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		Owner:    owner,
		Name:     randompkg.AccountName(),
		Balance:  balance,
		Currency: currency,
	}

	account, err := accountrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountrepo.Create(%+v) returned error: %v", arg, err)
	}

	return account
}

// SeedRandomAccount creates an account of owner with a random balance and currency.
func SeedRandomAccount(t *testing.T, db dbpkg.SQLInterface, owner string) domain.Account {
	t.Helper()

	return SeedAccount(t, db, owner, randompkg.MoneyAmountBetween(100, 1_000), randompkg.Currency())
}
