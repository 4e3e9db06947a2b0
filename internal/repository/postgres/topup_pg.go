// internal/repository/postgres/topup_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/util"

	"github.com/jmoiron/sqlx"
)

// TopUpRepository implements repository.TopUpRepository for PostgreSQL.
type TopUpRepository struct {
}

// NewTopUpRepository creates a new TopUpRepository.
func NewTopUpRepository(db *sqlx.DB) repository.TopUpRepository {
	return &TopUpRepository{}
}

// CreateTopUp inserts a new pending top-up record using the provided DBExecutor.
func (r *TopUpRepository) CreateTopUp(ctx context.Context, q repository.DBExecutor, topUp *domain.TopUpTransaction) error {
	if topUp.Status != domain.TransactionStatusPending {
		return util.ErrInvalidTransition
	}

	query := `INSERT INTO topup_transactions (id, user_id, amount, reference_number, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := q.ExecContext(ctx, query,
		topUp.ID, topUp.UserID, topUp.Amount, topUp.ReferenceNumber, topUp.Status, topUp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateID
		}
		return storageErr("failed to create top-up", err)
	}
	return nil
}

// GetTopUpByID retrieves a top-up by its id using the provided DBExecutor.
func (r *TopUpRepository) GetTopUpByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.TopUpTransaction, error) {
	var topUp domain.TopUpTransaction
	query := `SELECT id, user_id, amount, reference_number, status, created_at
              FROM topup_transactions WHERE id = $1`
	err := q.GetContext(ctx, &topUp, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, storageErr(fmt.Sprintf("failed to get top-up by id %s", id), err)
	}
	return &topUp, nil
}

// UpdateTopUpStatus transitions a pending top-up to a terminal status.
// The pending guard lives in the WHERE clause so the transition is a single
// atomic update; a zero row count is disambiguated by a follow-up read.
func (r *TopUpRepository) UpdateTopUpStatus(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus) error {
	if !domain.TransactionStatusPending.CanTransitionTo(status) {
		return util.ErrInvalidTransition
	}

	query := `UPDATE topup_transactions SET status = $1 WHERE id = $2 AND status = $3`
	result, err := q.ExecContext(ctx, query, status, id, domain.TransactionStatusPending)
	if err != nil {
		return storageErr(fmt.Sprintf("failed to update top-up %s", id), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr(fmt.Sprintf("failed to get rows affected for top-up %s", id), err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetTopUpByID(ctx, q, id); err != nil {
			return err
		}
		return util.ErrInvalidTransition
	}
	return nil
}

// ListTopUpsByUser retrieves a user's top-ups in insertion order.
func (r *TopUpRepository) ListTopUpsByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.TopUpTransaction, error) {
	topUps := []domain.TopUpTransaction{}
	query := `SELECT id, user_id, amount, reference_number, status, created_at
              FROM topup_transactions WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	if err := q.SelectContext(ctx, &topUps, query, userID); err != nil {
		return nil, storageErr(fmt.Sprintf("failed to list top-ups for user %s", userID), err)
	}
	return topUps, nil
}
