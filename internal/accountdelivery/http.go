// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/errorspkg"
	"github.com/securebank/bank-api/pkg/jsonresponse"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, holderName, email, accountType string, opening moneypkg.Money) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
	List(ctx context.Context, pageSize, pageID int32) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error)
	Delete(ctx context.Context, id int64) error
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	HolderName     string `json:"holder_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	AccountType    string `json:"account_type" binding:"required"`
	OpeningBalance string `json:"opening_balance" binding:"omitempty,amount"`
}

// Create handles http request to open an account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	opening := moneypkg.Zero()

	if req.OpeningBalance != "" {
		var err error

		opening, err = moneypkg.Parse(req.OpeningBalance)
		if err != nil {
			l.Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

			return
		}
	}

	account, err := h.service.Create(ctx, req.HolderName, req.Email, req.AccountType, opening)
	if err != nil {
		l.Info().Err(err).Send()

		switch {
		case errors.Is(err, domain.ErrAccountNumberExists):
			gctx.JSON(http.StatusConflict, jsonresponse.Error(err))
		case errors.Is(err, domain.ErrNegativeBalance):
			gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{account}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get an account by id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	account, err := h.service.Get(ctx, req.ID)
	if err != nil {
		var notFound *domain.AccountNotFoundError
		if errors.As(err, &notFound) {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type getByNumberRequest struct {
	Number string `uri:"number" binding:"required"`
}

// GetByNumber handles http request to get an account by account number.
func (h *Handler) GetByNumber(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getByNumberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	account, err := h.service.GetByNumber(ctx, req.Number)
	if err != nil {
		var notFound *domain.AccountNotFoundError
		if errors.As(err, &notFound) {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type listRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	accounts, err := h.service.List(ctx, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}

type dataCount struct {
	Count int64 `json:"count"`
}

type responseCount struct {
	Data dataCount `json:"data,omitempty"`
}

// Count handles http request to count accounts.
func (h *Handler) Count(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	count, err := h.service.Count(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseCount{Data: dataCount{count}})
}

type updateRequest struct {
	HolderName  string `json:"holder_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	AccountType string `json:"account_type" binding:"required"`
}

// Update handles http request to update account holder details.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri getRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	account, err := h.service.Update(ctx, domain.UpdateAccountParams{
		ID:         uri.ID,
		HolderName: req.HolderName,
		Email:      req.Email,
		Type:       req.AccountType,
	})
	if err != nil {
		var notFound *domain.AccountNotFoundError
		if errors.As(err, &notFound) {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// Delete handles http request to delete an account.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	if err := h.service.Delete(ctx, req.ID); err != nil {
		var notFound *domain.AccountNotFoundError
		if errors.As(err, &notFound) {
			gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))

		return
	}

	gctx.Status(http.StatusNoContent)
}
