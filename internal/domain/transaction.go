package domain

import (
	"time"

	"github.com/securebank/bank-api/pkg/moneypkg"
)

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

// A record starts as StatusPending and transitions exactly once to a
// terminal status. Terminal records are never re-opened or deleted.
const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// TransactionKind classifies the money movement.
type TransactionKind string

// Supported transaction kinds.
const (
	KindTransfer   TransactionKind = "TRANSFER"
	KindDeposit    TransactionKind = "DEPOSIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
)

// Transaction holds the audit record of one attempted money movement.
//
// FromAccountID is nil for deposits, ToAccountID is nil for withdrawals.
type Transaction struct {
	ID            int64             `json:"id"`
	FromAccountID *int64            `json:"from_account_id,omitempty"`
	ToAccountID   *int64            `json:"to_account_id,omitempty"`
	Amount        moneypkg.Money    `json:"amount"` // must be positive
	Kind          TransactionKind   `json:"kind"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	CreatedAt     time.Time         `json:"created_at"`
}

// CreateTransactionParams is the input data for persisting a new record.
type CreateTransactionParams struct {
	FromAccountID *int64            `json:"from_account_id"`
	ToAccountID   *int64            `json:"to_account_id"`
	Amount        moneypkg.Money    `json:"amount"`
	Kind          TransactionKind   `json:"kind"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
}
