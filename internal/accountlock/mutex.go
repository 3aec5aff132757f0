// Package accountlock serializes concurrent balance mutation per account.
//
// Each account id maps to exactly one Handle owned by a Registry. The
// handle carries a first-come-first-served mutex and a cached balance that
// is authoritative only while the lock is held.
package accountlock

import "sync"

// Mutex is a FIFO-fair mutual exclusion lock.
//
// Waiters acquire the lock strictly in arrival order, so no waiter is
// starved under sustained contention. Unlike sync.Mutex, unlocking an
// unheld Mutex is a no-op rather than a fault, and ownership is handed
// directly to the oldest waiter on unlock.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// Lock blocks until the lock is held by the caller.
func (m *Mutex) Lock() {
	m.mu.Lock()

	if !m.locked {
		m.locked = true
		m.mu.Unlock()

		return
	}

	wait := make(chan struct{})
	m.waiters = append(m.waiters, wait)
	m.mu.Unlock()

	<-wait
}

// TryLock attempts to acquire the lock without blocking and reports
// whether it succeeded.
func (m *Mutex) TryLock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.locked {
		return false
	}

	m.locked = true

	return true
}

// Unlock releases the lock, handing ownership to the oldest waiter if any.
// Calling Unlock without holding the lock is a no-op.
func (m *Mutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.locked {
		return
	}

	if len(m.waiters) > 0 {
		// Ownership transfer: locked stays true for the woken waiter.
		wait := m.waiters[0]
		m.waiters = m.waiters[1:]
		close(wait)

		return
	}

	m.locked = false
}
