// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/dbpkg"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `id, account_number, holder_name, email, balance, account_type, created_at, updated_at`

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Number,
		&a.HolderName,
		&a.Email,
		&a.Balance,
		&a.Type,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (account_number, holder_name, email, balance, account_type)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING ` + accountColumns

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Number, arg.HolderName, arg.Email, arg.Balance, arg.Type)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_account_number_key":
				return a, domain.ErrAccountNumberExists
			case "accounts_balance_check":
				return a, domain.ErrNegativeBalance
			}
		}

		return a, &domain.StoreError{Op: "account.create", Err: err}
	}

	return a, nil
}

const getQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, &domain.AccountNotFoundError{AccountID: id}
		}

		l.Error().Err(err).Send()

		return a, &domain.StoreError{Op: "account.get", Err: err}
	}

	return a, nil
}

const getByNumberQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1
`

// GetByNumber returns the account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByNumberQuery, number)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, &domain.AccountNotFoundError{Number: number}
		}

		l.Error().Err(err).Send()

		return a, &domain.StoreError{Op: "account.getByNumber", Err: err}
	}

	return a, nil
}

const listQuery = `
SELECT ` + accountColumns + `
FROM accounts
ORDER BY id
LIMIT $1 OFFSET $2
`

// List returns the specified page of accounts ordered by id.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, &domain.StoreError{Op: "account.list", Err: err}
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID,
			&a.Number,
			&a.HolderName,
			&a.Email,
			&a.Balance,
			&a.Type,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, &domain.StoreError{Op: "account.list", Err: err}
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, &domain.StoreError{Op: "account.list", Err: err}
	}

	return items, nil
}

const countQuery = `
SELECT count(*)
FROM accounts
`

// Count returns the total number of accounts.
func (r *RepoPGS) Count(ctx context.Context) (int64, error) {
	var n int64

	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return 0, &domain.StoreError{Op: "account.count", Err: err}
	}

	return n, nil
}

const updateQuery = `
UPDATE accounts
SET holder_name = $1, email = $2, account_type = $3, updated_at = now()
WHERE id = $4
RETURNING ` + accountColumns

// Update changes the account's holder details and returns the changed account.
func (r *RepoPGS) Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateQuery,
		arg.HolderName, arg.Email, arg.Type, arg.ID)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, &domain.AccountNotFoundError{AccountID: arg.ID}
		}

		l.Error().Err(err).Send()

		return a, &domain.StoreError{Op: "account.update", Err: err}
	}

	return a, nil
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = $1, updated_at = now()
WHERE id = $2
RETURNING ` + accountColumns

// UpdateBalance persists the new balance and returns the changed account.
//
// The caller must hold the account's mutation lock; this method performs no
// coordination of its own.
func (r *RepoPGS) UpdateBalance(ctx context.Context, id int64, balance moneypkg.Money) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, updateBalanceQuery, balance, id)

	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return a, &domain.AccountNotFoundError{AccountID: id}
		}

		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrNegativeBalance
			}
		}

		return a, &domain.StoreError{Op: "account.updateBalance", Err: err}
	}

	return a, nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE id = $1
`

// Delete removes the account with the given id.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		return &domain.StoreError{Op: "account.delete", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return &domain.StoreError{Op: "account.delete", Err: err}
	}

	if n == 0 {
		return &domain.AccountNotFoundError{AccountID: id}
	}

	return nil
}
