// internal/repository/withdrawal_repo.go
package repository

import (
	"context"

	"qrispay-ledger/internal/domain"
)

// WithdrawalRepository defines the interface for withdrawal transaction records.
type WithdrawalRepository interface {
	// CreateWithdrawal appends a new pending withdrawal. It fails with
	// util.ErrDuplicateID if the id already exists.
	CreateWithdrawal(ctx context.Context, q DBExecutor, withdrawal *domain.WithdrawalTransaction) error
	// GetWithdrawalByID retrieves a withdrawal by its id.
	GetWithdrawalByID(ctx context.Context, q DBExecutor, id string) (*domain.WithdrawalTransaction, error)
	// UpdateWithdrawalStatus transitions a pending withdrawal to a terminal
	// status as a per-record atomic update. It fails with util.ErrNotFound if
	// no such id and util.ErrInvalidTransition if the record is already
	// terminal.
	UpdateWithdrawalStatus(ctx context.Context, q DBExecutor, id string, status domain.TransactionStatus) error
	// ListWithdrawalsByUser returns the user's withdrawals in insertion order.
	ListWithdrawalsByUser(ctx context.Context, q DBExecutor, userID string) ([]domain.WithdrawalTransaction, error)
}
