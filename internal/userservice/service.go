// Package userservice manages business logic layer of users.
package userservice

import (
	"context"
	"errors"
	"strings"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/passpkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, username string) (domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New return user service struct to manage user business logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// SignUp hashes the password and stores the new user.
//
// Emails are stored lower cased so the same address cannot register twice.
func (s *Service) SignUp(ctx context.Context, arg domain.SignUpParams) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	hashedPassword, err := passpkg.Hash(arg.Password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	u, err := s.repo.Create(ctx, domain.CreateUserParams{
		Username:       arg.Username,
		HashedPassword: hashedPassword,
		FullName:       strings.TrimSpace(arg.FullName),
		Email:          strings.ToLower(strings.TrimSpace(arg.Email)),
	})
	if err != nil {
		return result, err
	}

	return NewUserWithoutPassword(u), nil
}

// Login checks the password of the user with the given username.
func (s *Service) Login(ctx context.Context, username, password string) (domain.UserWithoutPassword, error) {
	var result domain.UserWithoutPassword

	u, err := s.repo.Get(ctx, username)
	if err != nil {
		return result, err
	}

	if err := passpkg.Check(password, u.HashedPassword); err != nil {
		if !errors.Is(err, passpkg.ErrMismatch) {
			zerolog.Ctx(ctx).Error().Err(err).Send()
		}

		return result, domain.ErrWrongPassword
	}

	return NewUserWithoutPassword(u), nil
}
