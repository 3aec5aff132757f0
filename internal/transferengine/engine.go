// Package transferengine orchestrates money movement between accounts.
//
// Every operation follows the same template: validate the amount, resolve
// the accounts, persist a PENDING record, acquire the per-account locks in
// ascending id order, validate and mutate balances under the locks, and
// persist a terminal status. The ascending-id acquisition order is the sole
// deadlock-avoidance mechanism and must not be changed.
package transferengine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/securebank/bank-api/internal/accountlock"
	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

// AccountStore provides the account side of the ledger store boundary.
//
//go:generate mockgen -source engine.go -destination engine_mock.go -package transferengine
type AccountStore interface {
	Get(ctx context.Context, id int64) (domain.Account, error)
	UpdateBalance(ctx context.Context, id int64, balance moneypkg.Money) (domain.Account, error)
}

// TransactionStore provides the transaction-record side of the ledger store
// boundary.
type TransactionStore interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus) error
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

// Engine executes transfers, deposits and withdrawals while preserving
// balance invariants under concurrent access.
type Engine struct {
	accounts     AccountStore
	transactions TransactionStore
	locks        *accountlock.Registry
}

// New returns an Engine backed by the given stores and lock registry.
func New(accounts AccountStore, transactions TransactionStore, locks *accountlock.Registry) *Engine {
	return &Engine{
		accounts:     accounts,
		transactions: transactions,
		locks:        locks,
	}
}

// Transfer moves amount from one account to another.
//
// Both balances are persisted before the record is marked COMPLETED. If
// persisting the destination side fails after the source side succeeded,
// the record is marked FAILED but the source balance is NOT rolled back;
// the partially-applied balance stands. This mirrors the non-transactional
// contract of the store boundary and is a known consistency gap.
func (e *Engine) Transfer(ctx context.Context, fromID, toID int64, amount moneypkg.Money, description string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	if fromID == toID {
		return domain.Transaction{}, domain.ErrSameAccount
	}

	from, err := e.accounts.Get(ctx, fromID)
	if err != nil {
		return domain.Transaction{}, err
	}

	to, err := e.accounts.Get(ctx, toID)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx, err := e.transactions.Create(ctx, domain.CreateTransactionParams{
		FromAccountID: &fromID,
		ToAccountID:   &toID,
		Amount:        amount,
		Kind:          domain.KindTransfer,
		Status:        domain.StatusPending,
		Description:   description,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	fromHandle := e.locks.Obtain(from)
	toHandle := e.locks.Obtain(to)

	// Acquire locks in ascending account id order to prevent deadlocks.
	first, second := fromHandle, toHandle
	if toID < fromID {
		first, second = toHandle, fromHandle
	}

	first.Acquire()
	defer first.Release()

	second.Acquire()
	defer second.Release()

	if fromHandle.Balance().LessThan(amount) {
		e.markFailed(ctx, tx.ID)

		return domain.Transaction{}, &domain.InsufficientFundsError{
			AccountID: fromID,
			Available: fromHandle.Balance(),
			Required:  amount,
		}
	}

	newFrom := fromHandle.Balance().Sub(amount)
	newTo := toHandle.Balance().Add(amount)

	if _, err := e.accounts.UpdateBalance(ctx, fromID, newFrom); err != nil {
		e.markFailed(ctx, tx.ID)
		return domain.Transaction{}, &domain.TransactionFailedError{Cause: err}
	}

	fromHandle.SetBalance(newFrom)

	if _, err := e.accounts.UpdateBalance(ctx, toID, newTo); err != nil {
		// The source side is already persisted; no rollback.
		e.markFailed(ctx, tx.ID)
		return domain.Transaction{}, &domain.TransactionFailedError{Cause: err}
	}

	toHandle.SetBalance(newTo)

	if err := e.transactions.UpdateStatus(ctx, tx.ID, domain.StatusCompleted); err != nil {
		e.markFailed(ctx, tx.ID)
		return domain.Transaction{}, &domain.TransactionFailedError{Cause: err}
	}

	tx.Status = domain.StatusCompleted

	l.Info().
		Int64("transaction_id", tx.ID).
		Int64("from_account_id", fromID).
		Int64("to_account_id", toID).
		Str("amount", amount.String()).
		Msg("transfer completed")

	return tx, nil
}

// Deposit adds amount to the account's balance.
func (e *Engine) Deposit(ctx context.Context, accountID int64, amount moneypkg.Money, description string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	account, err := e.accounts.Get(ctx, accountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx, err := e.transactions.Create(ctx, domain.CreateTransactionParams{
		ToAccountID: &accountID,
		Amount:      amount,
		Kind:        domain.KindDeposit,
		Status:      domain.StatusPending,
		Description: description,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	handle := e.locks.Obtain(account)

	handle.Acquire()
	defer handle.Release()

	newBalance := handle.Balance().Add(amount)

	if _, err := e.accounts.UpdateBalance(ctx, accountID, newBalance); err != nil {
		e.markFailed(ctx, tx.ID)
		return domain.Transaction{}, &domain.TransactionFailedError{Cause: err}
	}

	handle.SetBalance(newBalance)

	if err := e.transactions.UpdateStatus(ctx, tx.ID, domain.StatusCompleted); err != nil {
		e.markFailed(ctx, tx.ID)
		return domain.Transaction{}, &domain.TransactionFailedError{Cause: err}
	}

	tx.Status = domain.StatusCompleted

	l.Info().
		Int64("transaction_id", tx.ID).
		Int64("account_id", accountID).
		Str("amount", amount.String()).
		Msg("deposit completed")

	return tx, nil
}

// Withdraw subtracts amount from the account's balance.
func (e *Engine) Withdraw(ctx context.Context, accountID int64, amount moneypkg.Money, description string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	account, err := e.accounts.Get(ctx, accountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx, err := e.transactions.Create(ctx, domain.CreateTransactionParams{
		FromAccountID: &accountID,
		Amount:        amount,
		Kind:          domain.KindWithdrawal,
		Status:        domain.StatusPending,
		Description:   description,
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	handle := e.locks.Obtain(account)

	handle.Acquire()
	defer handle.Release()

	if handle.Balance().LessThan(amount) {
		e.markFailed(ctx, tx.ID)

		return domain.Transaction{}, &domain.InsufficientFundsError{
			AccountID: accountID,
			Available: handle.Balance(),
			Required:  amount,
		}
	}

	newBalance := handle.Balance().Sub(amount)

	if _, err := e.accounts.UpdateBalance(ctx, accountID, newBalance); err != nil {
		e.markFailed(ctx, tx.ID)
		return domain.Transaction{}, &domain.TransactionFailedError{Cause: err}
	}

	handle.SetBalance(newBalance)

	if err := e.transactions.UpdateStatus(ctx, tx.ID, domain.StatusCompleted); err != nil {
		e.markFailed(ctx, tx.ID)
		return domain.Transaction{}, &domain.TransactionFailedError{Cause: err}
	}

	tx.Status = domain.StatusCompleted

	l.Info().
		Int64("transaction_id", tx.ID).
		Int64("account_id", accountID).
		Str("amount", amount.String()).
		Msg("withdrawal completed")

	return tx, nil
}

// Get returns the transaction with the given id.
func (e *Engine) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return e.transactions.Get(ctx, id)
}

// List returns all transactions, most recent first.
func (e *Engine) List(ctx context.Context) ([]domain.Transaction, error) {
	return e.transactions.List(ctx)
}

// ListByAccount returns the transactions touching the given account,
// most recent first.
func (e *Engine) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	return e.transactions.ListByAccount(ctx, accountID)
}

// markFailed persists the FAILED terminal status. The outcome of the
// operation is already decided at this point, so a failure here is logged
// and swallowed to keep the original error intact.
func (e *Engine) markFailed(ctx context.Context, id int64) {
	if err := e.transactions.UpdateStatus(ctx, id, domain.StatusFailed); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Int64("transaction_id", id).
			Msg("cannot mark transaction failed")
	}
}
