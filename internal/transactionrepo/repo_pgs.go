// Package transactionrepo manages repository layer of transaction records.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/dbpkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const transactionColumns = `id, from_account_id, to_account_id, amount, kind, status, description, created_at`

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scannable) (domain.Transaction, error) {
	var (
		t        domain.Transaction
		from, to sql.NullInt64
	)

	err := row.Scan(
		&t.ID,
		&from,
		&to,
		&t.Amount,
		&t.Kind,
		&t.Status,
		&t.Description,
		&t.CreatedAt,
	)

	if from.Valid {
		t.FromAccountID = &from.Int64
	}

	if to.Valid {
		t.ToAccountID = &to.Int64
	}

	return t, err
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *id, Valid: true}
}

const createQuery = `
INSERT INTO
    transactions (from_account_id, to_account_id, amount, kind, status, description)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING ` + transactionColumns

// Create persists a new transaction record and returns it with the
// authoritative assigned id.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		nullableID(arg.FromAccountID),
		nullableID(arg.ToAccountID),
		arg.Amount,
		arg.Kind,
		arg.Status,
		arg.Description,
	)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return t, &domain.StoreError{Op: "transaction.create", Err: err}
	}

	return t, nil
}

const updateStatusQuery = `
UPDATE transactions
SET status = $2
WHERE id = $1 AND status = 'PENDING'
RETURNING id
`

// UpdateStatus transitions a PENDING record to the given status.
//
// Terminal records are frozen: attempting to update one returns
// ErrTransactionFinal and leaves the row untouched.
func (r *RepoPGS) UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus) error {
	l := zerolog.Ctx(ctx)

	var updatedID int64

	err := r.db.QueryRowContext(ctx, updateStatusQuery, id, status).Scan(&updatedID)
	if err == nil {
		return nil
	}

	if err != sql.ErrNoRows {
		l.Error().Err(err).Send()
		return &domain.StoreError{Op: "transaction.updateStatus", Err: err}
	}

	// No PENDING row matched: either the record does not exist or it has
	// already reached a terminal status.
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	return domain.ErrTransactionFinal
}

const getQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return t, &domain.StoreError{Op: "transaction.get", Err: err}
	}

	return t, nil
}

const listQuery = `
SELECT ` + transactionColumns + `
FROM transactions
ORDER BY created_at DESC, id DESC
`

// List returns all transactions, most recent first.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Transaction, error) {
	return r.queryMany(ctx, listQuery)
}

const listByAccountQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE from_account_id = $1 OR to_account_id = $1
ORDER BY created_at DESC, id DESC
`

// ListByAccount returns the transactions referencing the given account as
// source or destination, most recent first.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	return r.queryMany(ctx, listByAccountQuery, accountID)
}

func (r *RepoPGS) queryMany(ctx context.Context, query string, args ...interface{}) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, &domain.StoreError{Op: "transaction.list", Err: err}
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, &domain.StoreError{Op: "transaction.list", Err: err}
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, &domain.StoreError{Op: "transaction.list", Err: err}
	}

	return items, nil
}
