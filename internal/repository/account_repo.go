// internal/repository/account_repo.go
package repository

import (
	"context"

	"qrispay-ledger/internal/domain"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount inserts a new account. It fails with util.ErrDuplicateAccount
	// if the email is already taken, even when the caller checked first.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByID retrieves an account by its id.
	GetAccountByID(ctx context.Context, q DBExecutor, id string) (*domain.Account, error)
	// GetAccountByEmail retrieves an account by its email.
	GetAccountByEmail(ctx context.Context, q DBExecutor, email string) (*domain.Account, error)
	// SetBalance replaces the account balance with newBalance. It fails with
	// util.ErrNotFound if the account does not exist and util.ErrInvalidBalance
	// if newBalance is negative. This is the only balance mutation path.
	SetBalance(ctx context.Context, q DBExecutor, id string, newBalance int64) error
}
