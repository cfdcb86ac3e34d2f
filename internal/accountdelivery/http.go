// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, owner string, id int32) (domain.Account, error)
	List(ctx context.Context, owner string, includeArchived bool, pageSize, pageID int32) ([]domain.Account, error)
	Candidates(ctx context.Context, owner string, sourceID int32) ([]domain.Account, error)
	UpdateFlags(ctx context.Context, owner string, arg domain.UpdateAccountFlagsParams) (domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

// View is the API representation of an account.
//
// Balance is null when the owner chose to hide it.
type View struct {
	ID          int32            `json:"id"`
	Name        string           `json:"name"`
	Balance     *decimal.Decimal `json:"balance"`
	Currency    string           `json:"currency"`
	IsArchived  bool             `json:"is_archived"`
	HideBalance bool             `json:"hide_balance"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewView returns the API representation of a.
func NewView(a domain.Account) View {
	v := View{
		ID:          a.ID,
		Name:        a.Name,
		Currency:    a.Currency,
		IsArchived:  a.IsArchived,
		HideBalance: a.HideBalance,
		CreatedAt:   a.CreatedAt,
	}

	if !a.HideBalance {
		balance := a.Balance
		v.Balance = &balance
	}

	return v
}

func newViews(accounts []domain.Account) []View {
	views := make([]View, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, NewView(a))
	}

	return views
}

type accountData struct {
	Account View `json:"account"`
}

type accountsData struct {
	Accounts []View `json:"accounts"`
}

func bindError(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.BindingError(err))
}

// ServiceError maps account errors to http responses.
func ServiceError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrAccountNameExists):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, domain.ErrAccountArchived),
		errors.Is(err, domain.ErrInsufficientFunds):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type createRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Currency string `json:"currency" binding:"required,currency"`
	Balance  string `json:"balance"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	balance := decimal.Zero

	if req.Balance != "" {
		var err error

		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
			return
		}
	}

	acc, err := h.service.Create(ctx, domain.CreateAccountParams{
		Owner:    middleware.Username(gctx),
		Name:     req.Name,
		Balance:  balance,
		Currency: req.Currency,
	})
	if err != nil {
		ServiceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: accountData{NewView(acc)}})
}

type idRequest struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		bindError(gctx, err)
		return
	}

	acc, err := h.service.Get(ctx, middleware.Username(gctx), req.ID)
	if err != nil {
		ServiceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{NewView(acc)}})
}

type listRequest struct {
	PageID          int32 `form:"page_id" binding:"required,min=1,max=10000"`
	PageSize        int32 `form:"page_size" binding:"required,min=1,max=100"`
	IncludeArchived bool  `form:"include_archived"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	accounts, err := h.service.List(ctx, middleware.Username(gctx), req.IncludeArchived, req.PageSize, req.PageID)
	if err != nil {
		ServiceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountsData{newViews(accounts)}})
}

type candidatesRequest struct {
	SourceID int32 `form:"source_id" binding:"min=0"`
}

// Candidates handles http request to list accounts a transfer can use.
func (h *Handler) Candidates(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req candidatesRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	accounts, err := h.service.Candidates(ctx, middleware.Username(gctx), req.SourceID)
	if err != nil {
		ServiceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountsData{newViews(accounts)}})
}

type updateFlagsRequest struct {
	IsArchived  *bool `json:"is_archived"`
	HideBalance *bool `json:"hide_balance"`
}

// UpdateFlags handles http request to archive an account or hide its balance.
func (h *Handler) UpdateFlags(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req updateFlagsRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	acc, err := h.service.UpdateFlags(ctx, middleware.Username(gctx), domain.UpdateAccountFlagsParams{
		ID:          uri.ID,
		IsArchived:  req.IsArchived,
		HideBalance: req.HideBalance,
	})
	if err != nil {
		ServiceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: accountData{NewView(acc)}})
}
