// Package asyncpool provides a bounded worker pool for asynchronous
// transaction submission.
//
// The pool mirrors the process lifecycle: it is started once at boot and
// drained on shutdown, waiting a bounded grace period for in-flight work
// before forcibly canceling whatever remains queued. Work that has already
// entered the engine's locked section always runs to a terminal outcome.
package asyncpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

const (
	// DefaultSize is the number of workers when none is configured.
	DefaultSize = 10
	// DefaultGrace is the shutdown grace period when none is configured.
	DefaultGrace = 60 * time.Second
)

var (
	// ErrPoolClosed indicates a submission after shutdown began.
	ErrPoolClosed = errors.New("submission pool is closed")
	// ErrCanceled indicates the submission was canceled before execution.
	ErrCanceled = errors.New("submission canceled")
	// ErrUnknownKind indicates an unsupported transaction kind.
	ErrUnknownKind = errors.New("unknown transaction kind")
)

// Engine executes the submitted operations.
//
//go:generate mockgen -source pool.go -destination pool_mock.go -package asyncpool
type Engine interface {
	Transfer(ctx context.Context, fromID, toID int64, amount moneypkg.Money, description string) (domain.Transaction, error)
	Deposit(ctx context.Context, accountID int64, amount moneypkg.Money, description string) (domain.Transaction, error)
	Withdraw(ctx context.Context, accountID int64, amount moneypkg.Money, description string) (domain.Transaction, error)
}

// Request describes one transaction submission.
//
// Transfer uses FromAccountID and ToAccountID; deposit and withdrawal use
// AccountID only.
type Request struct {
	Kind          domain.TransactionKind
	FromAccountID int64
	ToAccountID   int64
	AccountID     int64
	Amount        moneypkg.Money
	Description   string
}

// Future state machine.
const (
	statePending int32 = iota
	stateRunning
	stateCanceled
)

// Future resolves to the outcome of one submitted request. Callers can
// poll Done or block on Wait.
type Future struct {
	state int32
	done  chan struct{}

	tx  domain.Transaction
	err error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done is closed once the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is done. The submitted work
// keeps running even if ctx expires first.
func (f *Future) Wait(ctx context.Context) (domain.Transaction, error) {
	select {
	case <-f.done:
		return f.tx, f.err
	case <-ctx.Done():
		return domain.Transaction{}, ctx.Err()
	}
}

// Cancel prevents execution if it has not started yet and reports whether
// it succeeded. Work already in progress cannot be canceled and runs to a
// terminal outcome.
func (f *Future) Cancel() bool {
	if !atomic.CompareAndSwapInt32(&f.state, statePending, stateCanceled) {
		return false
	}

	f.err = ErrCanceled
	close(f.done)

	return true
}

func (f *Future) resolve(tx domain.Transaction, err error) {
	f.tx = tx
	f.err = err
	close(f.done)
}

type task struct {
	req Request
	fut *Future
}

// Pool is a fixed-size worker pool executing transaction requests.
type Pool struct {
	engine Engine
	logger zerolog.Logger
	size   int
	grace  time.Duration

	queue chan *task
	wg    sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// New returns an unstarted pool. Non-positive size or grace fall back to
// the defaults.
func New(engine Engine, size int, grace time.Duration, logger zerolog.Logger) *Pool {
	if size <= 0 {
		size = DefaultSize
	}

	if grace <= 0 {
		grace = DefaultGrace
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		engine:  engine,
		logger:  logger,
		size:    size,
		grace:   grace,
		queue:   make(chan *task, size),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Info().Int("size", p.size).Msg("submission pool started")
}

// Submit enqueues a request and returns its future. It fails immediately
// with ErrPoolClosed once shutdown has begun.
func (p *Pool) Submit(req Request) (*Future, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	fut := newFuture()
	p.queue <- &task{req: req, fut: fut}

	return fut, nil
}

// Stop drains the pool: no new work is accepted, in-flight work gets up to
// the grace period to finish, and remaining queued work is canceled once
// the grace period elapses.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info().Msg("submission pool drained")
	case <-time.After(p.grace):
		// Queued-but-unstarted tasks resolve with ErrCanceled; running
		// operations hold account locks and are left to finish.
		p.cancel()
		p.logger.Warn().Dur("grace", p.grace).Msg("submission pool shutdown grace elapsed")
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for t := range p.queue {
		if p.baseCtx.Err() != nil {
			t.fut.Cancel()
			continue
		}

		if !atomic.CompareAndSwapInt32(&t.fut.state, statePending, stateRunning) {
			continue // canceled before execution
		}

		t.fut.resolve(p.execute(t.req))
	}
}

func (p *Pool) execute(req Request) (domain.Transaction, error) {
	ctx := p.logger.WithContext(p.baseCtx)

	switch req.Kind {
	case domain.KindTransfer:
		return p.engine.Transfer(ctx, req.FromAccountID, req.ToAccountID, req.Amount, req.Description)
	case domain.KindDeposit:
		return p.engine.Deposit(ctx, req.AccountID, req.Amount, req.Description)
	case domain.KindWithdrawal:
		return p.engine.Withdraw(ctx, req.AccountID, req.Amount, req.Description)
	default:
		return domain.Transaction{}, ErrUnknownKind
	}
}
