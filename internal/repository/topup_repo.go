// internal/repository/topup_repo.go
package repository

import (
	"context"

	"qrispay-ledger/internal/domain"
)

// TopUpRepository defines the interface for top-up transaction records.
type TopUpRepository interface {
	// CreateTopUp appends a new pending top-up. It fails with
	// util.ErrDuplicateID if the id already exists.
	CreateTopUp(ctx context.Context, q DBExecutor, topUp *domain.TopUpTransaction) error
	// GetTopUpByID retrieves a top-up by its id.
	GetTopUpByID(ctx context.Context, q DBExecutor, id string) (*domain.TopUpTransaction, error)
	// UpdateTopUpStatus transitions a pending top-up to a terminal status as a
	// per-record atomic update. It fails with util.ErrNotFound if no such id
	// and util.ErrInvalidTransition if the record is already terminal.
	UpdateTopUpStatus(ctx context.Context, q DBExecutor, id string, status domain.TransactionStatus) error
	// ListTopUpsByUser returns the user's top-ups in insertion order.
	ListTopUpsByUser(ctx context.Context, q DBExecutor, userID string) ([]domain.TopUpTransaction, error)
}
