package accountservice

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func randomAccount(id int32, owner, currency string) domain.Account {
	return domain.Account{
		ID:        id,
		Owner:     owner,
		Name:      randompkg.AccountName(),
		Balance:   randompkg.MoneyAmountBetween(0, 1000),
		Currency:  currency,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreate(t *testing.T) {
	owner := randompkg.Owner()
	acc := randomAccount(1, owner, currencypkg.USD)

	arg := domain.CreateAccountParams{
		Owner:    owner,
		Name:     acc.Name,
		Balance:  acc.Balance,
		Currency: acc.Currency,
	}

	testCases := []struct {
		name       string
		arg        domain.CreateAccountParams
		buildStubs func(repo *MockRepo)
		wantError  error
	}{
		{
			name: "OK",
			arg: domain.CreateAccountParams{
				Owner:    owner,
				Name:     "  " + acc.Name + " ",
				Balance:  acc.Balance,
				Currency: acc.Currency,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), arg).Times(1).Return(acc, nil)
			},
		},
		{
			name: "BlankName",
			arg: domain.CreateAccountParams{
				Owner:    owner,
				Name:     "   ",
				Currency: currencypkg.USD,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidAccountName,
		},
		{
			name: "UnsupportedCurrency",
			arg: domain.CreateAccountParams{
				Owner:    owner,
				Name:     acc.Name,
				Currency: "XYZ",
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrUnsupportedCurrency,
		},
		{
			name: "NegativeOpeningBalance",
			arg: domain.CreateAccountParams{
				Owner:    owner,
				Name:     acc.Name,
				Balance:  decimal.NewFromInt(-1),
				Currency: currencypkg.USD,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidAmount,
		},
		{
			name: "NameExists",
			arg:  arg,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), arg).Times(1).Return(domain.Account{}, domain.ErrAccountNameExists)
			},
			wantError: domain.ErrAccountNameExists,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).Create(context.Background(), tc.arg)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}

			require.NoError(t, err)
			require.Empty(t, cmp.Diff(acc, got, decimalComparer))
		})
	}
}

func TestGet(t *testing.T) {
	owner := randompkg.Owner()
	acc := randomAccount(1, owner, currencypkg.USD)

	testCases := []struct {
		name       string
		owner      string
		buildStubs func(repo *MockRepo)
		wantError  error
	}{
		{
			name:  "OK",
			owner: owner,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), acc.ID).Times(1).Return(acc, nil)
			},
		},
		{
			name:  "ForeignAccount",
			owner: "intruder",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), acc.ID).Times(1).Return(acc, nil)
			},
			wantError: domain.ErrAccountNotFound,
		},
		{
			name:  "RepoErr",
			owner: owner,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), acc.ID).Times(1).Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).Get(context.Background(), tc.owner, acc.ID)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				require.Empty(t, got)

				return
			}

			require.NoError(t, err)
			require.Empty(t, cmp.Diff(acc, got, decimalComparer))
		})
	}
}

func TestList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := randompkg.Owner()
	accounts := []domain.Account{randomAccount(1, owner, currencypkg.USD)}

	repo := NewMockRepo(ctrl)
	repo.EXPECT().List(gomock.Any(), domain.ListAccountsParams{
		Owner:           owner,
		IncludeArchived: true,
		Limit:           10,
		Offset:          20,
	}).Times(1).Return(accounts, nil)

	got, err := New(repo).List(context.Background(), owner, true, 10, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestCandidates(t *testing.T) {
	owner := randompkg.Owner()

	source := randomAccount(1, owner, currencypkg.USD)
	sameCurrency := randomAccount(2, owner, currencypkg.USD)
	otherCurrency := randomAccount(3, owner, currencypkg.EUR)
	archived := randomAccount(4, owner, currencypkg.USD)
	archived.IsArchived = true

	all := []domain.Account{source, sameCurrency, otherCurrency, archived}
	listAll := domain.ListAccountsParams{Owner: owner, Limit: candidatesLimit}

	ids := func(accounts []domain.Account) []int32 {
		res := []int32{}
		for _, a := range accounts {
			res = append(res, a.ID)
		}
		return res
	}

	testCases := []struct {
		name       string
		sourceID   int32
		buildStubs func(repo *MockRepo)
		wantIDs    []int32
		wantError  error
	}{
		{
			name: "NoSource",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().List(gomock.Any(), listAll).Times(1).Return(all, nil)
			},
			wantIDs: []int32{1, 2, 3},
		},
		{
			name:     "WithSource",
			sourceID: source.ID,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), source.ID).Times(1).Return(source, nil)
				repo.EXPECT().List(gomock.Any(), listAll).Times(1).Return(all, nil)
			},
			wantIDs: []int32{2},
		},
		{
			name:     "ArchivedSource",
			sourceID: archived.ID,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), archived.ID).Times(1).Return(archived, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrAccountArchived,
		},
		{
			name:     "ForeignSource",
			sourceID: 9,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int32(9)).Times(1).Return(randomAccount(9, "bob", currencypkg.USD), nil)
				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).Candidates(context.Background(), owner, tc.sourceID)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantIDs, ids(got))
		})
	}
}

func TestUpdateFlags(t *testing.T) {
	owner := randompkg.Owner()
	acc := randomAccount(1, owner, currencypkg.USD)
	archive := true

	archived := acc
	archived.IsArchived = true

	testCases := []struct {
		name       string
		owner      string
		arg        domain.UpdateAccountFlagsParams
		buildStubs func(repo *MockRepo)
		want       domain.Account
		wantError  error
	}{
		{
			name:  "Archive",
			owner: owner,
			arg:   domain.UpdateAccountFlagsParams{ID: acc.ID, IsArchived: &archive},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), acc.ID).Times(1).Return(acc, nil)
				repo.EXPECT().
					UpdateFlags(gomock.Any(), domain.UpdateAccountFlagsParams{ID: acc.ID, IsArchived: &archive}).
					Times(1).
					Return(archived, nil)
			},
			want: archived,
		},
		{
			name:  "NothingToChange",
			owner: owner,
			arg:   domain.UpdateAccountFlagsParams{ID: acc.ID},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), acc.ID).Times(1).Return(acc, nil)
				repo.EXPECT().UpdateFlags(gomock.Any(), gomock.Any()).Times(0)
			},
			want: acc,
		},
		{
			name:  "ForeignAccount",
			owner: "intruder",
			arg:   domain.UpdateAccountFlagsParams{ID: acc.ID, IsArchived: &archive},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), acc.ID).Times(1).Return(acc, nil)
				repo.EXPECT().UpdateFlags(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo).UpdateFlags(context.Background(), tc.owner, tc.arg)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}

			require.NoError(t, err)
			require.Empty(t, cmp.Diff(tc.want, got, decimalComparer))
		})
	}
}
