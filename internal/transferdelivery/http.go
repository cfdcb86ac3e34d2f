// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// IdempotencyKeyHeader carries the client generated key of a transfer request.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, owner string, arg domain.CreateTransferParams) (domain.TransferResult, error)
	List(ctx context.Context, owner string, accountID, pageSize, pageID int32) ([]domain.TransferRecord, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type request struct {
	SourceAccountID      int32  `json:"source_account_id" binding:"required,min=1"`
	DestinationAccountID int32  `json:"destination_account_id" binding:"required,min=1"`
	Amount               string `json:"amount" binding:"required"`
	Notes                string `json:"notes" binding:"max=255"`
}

type data struct {
	Transfer domain.TransferResult `json:"transfer"`
}

// statusFor maps a transfer error code to the http status.
func statusFor(te *domain.TransferError) int {
	switch te.Code {
	case domain.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case domain.CodeAccountNotFound:
		return http.StatusNotFound
	case domain.CodeDuplicateRequest:
		return http.StatusConflict
	case domain.CodeWriteFailed:
		return http.StatusServiceUnavailable
	case domain.CodeUnreconciled:
		return http.StatusInternalServerError
	}

	return http.StatusBadRequest
}

// Create handles http request to create a transfer between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	arg := domain.CreateTransferParams{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Notes:                req.Notes,
		IdempotencyKey:       gctx.GetHeader(IdempotencyKeyHeader),
	}

	result, err := h.service.Transfer(ctx, middleware.Username(gctx), arg)
	if err != nil {
		te, ok := domain.AsTransferError(err)
		if !ok {
			l.Error().Err(err).Send()
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

			return
		}

		status := statusFor(te)
		if status < http.StatusInternalServerError {
			l.Info().Err(err).Send()
		}

		// Store causes stay in the logs.
		gctx.JSON(status, web.CodedError(te.Code, te.Category(), te.Kind))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: data{result}})
}

type listRequest struct {
	AccountID int32 `form:"account_id" binding:"required,min=1"`
	PageID    int32 `form:"page_id" binding:"required,min=1,max=10000"`
	PageSize  int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type listData struct {
	Transfers []domain.TransferRecord `json:"transfers"`
}

// List handles http request to list transfers touching an account.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	transfers, err := h.service.List(ctx, middleware.Username(gctx), req.AccountID, req.PageSize, req.PageID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(domain.ErrAccountNotFound))
			return
		}

		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	if transfers == nil {
		transfers = []domain.TransferRecord{}
	}

	gctx.JSON(http.StatusOK, web.Response{Data: listData{transfers}})
}
