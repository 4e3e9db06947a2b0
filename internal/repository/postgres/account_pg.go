// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// storageErr wraps an unexpected driver error so callers can distinguish
// transient storage faults from domain validation errors.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, util.ErrStorageUnavailable, err)
}

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account using the provided DBExecutor.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (id, name, email, balance, created_at)
              VALUES ($1, $2, $3, $4, $5)`
	_, err := q.ExecContext(ctx, query, account.ID, account.Name, account.Email, account.Balance, account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateAccount
		}
		return storageErr("failed to create account", err)
	}
	return nil
}

// GetAccountByID retrieves an account by its id using the provided DBExecutor.
func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, name, email, balance, created_at FROM accounts WHERE id = $1`
	err := q.GetContext(ctx, &account, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, storageErr(fmt.Sprintf("failed to get account by id %s", id), err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by its email using the provided DBExecutor.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, name, email, balance, created_at FROM accounts WHERE email = $1`
	err := q.GetContext(ctx, &account, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, storageErr(fmt.Sprintf("failed to get account by email %s", email), err)
	}
	return &account, nil
}

// SetBalance replaces the balance of an account using the provided DBExecutor.
func (r *AccountRepository) SetBalance(ctx context.Context, q repository.DBExecutor, id string, newBalance int64) error {
	if newBalance < 0 {
		return util.ErrInvalidBalance
	}

	query := `UPDATE accounts SET balance = $1 WHERE id = $2`
	result, err := q.ExecContext(ctx, query, newBalance, id)
	if err != nil {
		return storageErr(fmt.Sprintf("failed to set balance for account %s", id), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr(fmt.Sprintf("failed to get rows affected for account %s", id), err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
