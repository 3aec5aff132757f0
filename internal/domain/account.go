// Package domain provides definitions of all entities.
package domain

import (
	"time"

	"github.com/securebank/bank-api/pkg/moneypkg"
)

// Account holds durable account data as persisted by the ledger store.
//
// Balance is a snapshot taken at load time. It is only authoritative
// while the corresponding account lock is held; see accountlock.Handle.
type Account struct {
	ID         int64          `json:"id"`
	Number     string         `json:"account_number"`
	HolderName string         `json:"holder_name"`
	Email      string         `json:"email"`
	Balance    moneypkg.Money `json:"balance"`
	Type       string         `json:"account_type"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreateAccountParams is the input data for opening an account.
type CreateAccountParams struct {
	Number     string         `json:"account_number"`
	HolderName string         `json:"holder_name"`
	Email      string         `json:"email"`
	Balance    moneypkg.Money `json:"balance"`
	Type       string         `json:"account_type"`
}

// UpdateAccountParams is the input data for updating account details.
// Balance changes never go through here; they belong to the transfer engine.
type UpdateAccountParams struct {
	ID         int64  `json:"id"`
	HolderName string `json:"holder_name"`
	Email      string `json:"email"`
	Type       string `json:"account_type"`
}
