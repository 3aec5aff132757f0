package domain

import (
	"errors"
	"fmt"

	"github.com/securebank/bank-api/pkg/moneypkg"
)

var (
	// ErrInvalidAmount indicates a non-positive transaction amount.
	// Rejected before any record is created.
	ErrInvalidAmount = errors.New("transaction amount must be positive")
	// ErrSameAccount indicates a transfer where source and destination match.
	ErrSameAccount = errors.New("source and destination accounts are the same")
	// ErrAccountNumberExists indicates that the account number is already taken.
	ErrAccountNumberExists = errors.New("account number already exists")
	// ErrNegativeBalance indicates an attempt to persist a negative balance.
	ErrNegativeBalance = errors.New("account balance cannot be negative")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrTransactionFinal indicates an attempt to change a terminal status.
	ErrTransactionFinal = errors.New("transaction already in terminal status")
)

// AccountNotFoundError indicates that a referenced account does not resolve.
type AccountNotFoundError struct {
	AccountID int64
	Number    string
}

func (e *AccountNotFoundError) Error() string {
	if e.Number != "" {
		return fmt.Sprintf("account %s not found", e.Number)
	}

	return fmt.Sprintf("account %d not found", e.AccountID)
}

// InsufficientFundsError indicates that the source balance cannot cover the
// requested amount. The corresponding transaction record is already
// persisted as FAILED when this error is returned.
type InsufficientFundsError struct {
	AccountID int64
	Available moneypkg.Money
	Required  moneypkg.Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %d: available %s, required %s",
		e.AccountID, e.Available, e.Required)
}

// TransactionFailedError wraps any unexpected failure inside the locked
// mutation section. The transaction record is persisted as FAILED before
// this error is returned.
type TransactionFailedError struct {
	Cause error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction failed: %v", e.Cause)
}

func (e *TransactionFailedError) Unwrap() error {
	return e.Cause
}

// StoreError is an opaque failure from the ledger store. It is propagated
// as-is; this core never retries store operations.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
