package accountlock

import (
	"sync"
	"time"

	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

// Handle is the in-memory representative of one account. It guards all
// balance mutation for that account.
//
// Balance and SetBalance are only valid while the caller holds the lock.
type Handle struct {
	accountID int64
	mu        Mutex

	balance   moneypkg.Money
	updatedAt time.Time
}

// AccountID returns the id of the guarded account.
func (h *Handle) AccountID() int64 {
	return h.accountID
}

// Acquire blocks until the caller holds the account's mutation lock.
// Acquisition order is first-come-first-served.
func (h *Handle) Acquire() {
	h.mu.Lock()
}

// TryAcquire attempts non-blocking acquisition and reports success.
func (h *Handle) TryAcquire() bool {
	return h.mu.TryLock()
}

// Release relinquishes the lock. Releasing an unheld handle is a no-op.
func (h *Handle) Release() {
	h.mu.Unlock()
}

// Balance returns the cached balance. Caller must hold the lock.
func (h *Handle) Balance() moneypkg.Money {
	return h.balance
}

// SetBalance updates the cached balance and refreshes the last-update
// timestamp. Caller must hold the lock, and must have persisted the same
// balance to the ledger store so cache and store stay in sync.
func (h *Handle) SetBalance(b moneypkg.Money) {
	h.balance = b
	h.updatedAt = time.Now()
}

// UpdatedAt returns the time of the last balance change.
func (h *Handle) UpdatedAt() time.Time {
	return h.updatedAt
}

// Registry owns the account handles. At most one handle exists per account
// id for the lifetime of the process, so every operation touching the same
// account contends on the same lock.
type Registry struct {
	mu      sync.Mutex
	handles map[int64]*Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[int64]*Handle),
	}
}

// Obtain returns the handle for the given account, creating it on first
// sight. A new handle seeds its balance cache from the loaded account row;
// an existing handle keeps its cache, which is kept in sync with the store
// by the lock holder on every mutation.
func (r *Registry) Obtain(account domain.Account) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[account.ID]
	if !ok {
		h = &Handle{
			accountID: account.ID,
			balance:   account.Balance,
			updatedAt: account.UpdatedAt,
		}
		r.handles[account.ID] = h
	}

	return h
}

// Forget drops the handle for the given account id. Used when an account
// is deleted so the registry does not grow without bound.
func (r *Registry) Forget(accountID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.handles, accountID)
}
