// Package entrydelivery manages delivery layer of manual income and expense entries.
package entrydelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/accountdelivery"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by entry delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package entrydelivery
type Service interface {
	Record(ctx context.Context, owner string, accountID int32, amount, notes string) (domain.EntryResult, error)
	List(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.Entry, error)
}

// Handler facilitates entry delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns entry handler.
func NewHandler(es Service) *Handler {
	return &Handler{service: es}
}

type accountURI struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

type createRequest struct {
	Amount string `json:"amount" binding:"required"`
	Notes  string `json:"notes" binding:"max=255"`
}

type entryData struct {
	Entry   domain.Entry         `json:"entry"`
	Account accountdelivery.View `json:"account"`
}

func bindError(gctx *gin.Context, err error) {
	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.BindingError(err))
}

// Create handles http request to record an income or expense on an account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	res, err := h.service.Record(ctx, middleware.Username(gctx), uri.ID, req.Amount, req.Notes)
	if err != nil {
		accountdelivery.ServiceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{
		Data: entryData{
			Entry:   res.Entry,
			Account: accountdelivery.NewView(res.Account),
		},
	})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1,max=10000"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type entriesData struct {
	Entries []domain.Entry `json:"entries"`
}

// List handles http request to list entries of an account.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri accountURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindError(gctx, err)
		return
	}

	entries, err := h.service.List(ctx, middleware.Username(gctx), uri.ID, req.PageSize, req.PageID)
	if err != nil {
		accountdelivery.ServiceError(gctx, err)
		return
	}

	if entries == nil {
		entries = []domain.Entry{}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: entriesData{entries}})
}
