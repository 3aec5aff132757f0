// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/securebank/bank-api/internal/asyncpool"
	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/errorspkg"
	"github.com/securebank/bank-api/pkg/jsonresponse"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

// Service provides the transaction operations needed by the delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Transfer(ctx context.Context, fromID, toID int64, amount moneypkg.Money, description string) (domain.Transaction, error)
	Deposit(ctx context.Context, accountID int64, amount moneypkg.Money, description string) (domain.Transaction, error)
	Withdraw(ctx context.Context, accountID int64, amount moneypkg.Money, description string) (domain.Transaction, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
	pool    *asyncpool.Pool
}

// NewHandler returns transaction handler.
func NewHandler(ts Service, pool *asyncpool.Pool) *Handler {
	return &Handler{service: ts, pool: pool}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// respondError maps domain errors onto HTTP status codes.
func respondError(gctx *gin.Context, err error) {
	var (
		notFound     *domain.AccountNotFoundError
		insufficient *domain.InsufficientFundsError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount):
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
	case errors.As(err, &insufficient):
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))
	case errors.As(err, &notFound):
		gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
	case errors.Is(err, domain.ErrTransactionNotFound):
		gctx.JSON(http.StatusNotFound, jsonresponse.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, jsonresponse.Error(errorspkg.ErrInternal))
	}
}

type transferRequest struct {
	FromAccountID int64  `json:"from_account_id" binding:"required,min=1"`
	ToAccountID   int64  `json:"to_account_id" binding:"required,min=1"`
	Amount        string `json:"amount" binding:"required,amount"`
	Description   string `json:"description"`
}

// Transfer handles http request to move money between two accounts.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	amount := moneypkg.MustParse(req.Amount) // validated by the amount binding

	tx, err := h.service.Transfer(ctx, req.FromAccountID, req.ToAccountID, amount, req.Description)
	if err != nil {
		l.Info().Err(err).Send()
		respondError(gctx, err)

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{tx}})
}

type singleAccountRequest struct {
	AccountID   int64  `json:"account_id" binding:"required,min=1"`
	Amount      string `json:"amount" binding:"required,amount"`
	Description string `json:"description"`
}

// Deposit handles http request to add money to an account.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req singleAccountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	tx, err := h.service.Deposit(ctx, req.AccountID, moneypkg.MustParse(req.Amount), req.Description)
	if err != nil {
		l.Info().Err(err).Send()
		respondError(gctx, err)

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{tx}})
}

// Withdraw handles http request to remove money from an account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req singleAccountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	tx, err := h.service.Withdraw(ctx, req.AccountID, moneypkg.MustParse(req.Amount), req.Description)
	if err != nil {
		l.Info().Err(err).Send()
		respondError(gctx, err)

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{tx}})
}

type submitRequest struct {
	Kind          string `json:"kind" binding:"required,oneof=TRANSFER DEPOSIT WITHDRAWAL"`
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
	AccountID     int64  `json:"account_id"`
	Amount        string `json:"amount" binding:"required,amount"`
	Description   string `json:"description"`
}

// Submit handles http request to execute a transaction through the worker
// pool. The request blocks until the submission resolves or the client
// gives up.
func (h *Handler) Submit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req submitRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	fut, err := h.pool.Submit(asyncpool.Request{
		Kind:          domain.TransactionKind(req.Kind),
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		AccountID:     req.AccountID,
		Amount:        moneypkg.MustParse(req.Amount),
		Description:   req.Description,
	})
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusServiceUnavailable, jsonresponse.Error(err))

		return
	}

	tx, err := fut.Wait(ctx)
	if err != nil {
		l.Info().Err(err).Send()

		switch {
		case errors.Is(err, asyncpool.ErrCanceled):
			gctx.JSON(http.StatusServiceUnavailable, jsonresponse.Error(err))
		case errors.Is(err, ctx.Err()):
			// Client gave up; the submitted work keeps running.
			gctx.JSON(http.StatusAccepted, jsonresponse.Error(err))
		default:
			respondError(gctx, err)
		}

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{tx}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get a transaction by id.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	tx, err := h.service.Get(ctx, req.ID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{tx}})
}

// List handles http request to list all transactions, most recent first.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	transactions, err := h.service.List(ctx)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

// ListByAccount handles http request to list the transactions touching an
// account, most recent first.
func (h *Handler) ListByAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, jsonresponse.Error(err))

		return
	}

	transactions, err := h.service.ListByAccount(ctx, req.ID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}
