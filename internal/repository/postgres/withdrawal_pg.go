// internal/repository/postgres/withdrawal_pg.go
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

// WithdrawalRepository implements repository.WithdrawalRepository for PostgreSQL.
type WithdrawalRepository struct {
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(db *sqlx.DB) repository.WithdrawalRepository {
	return &WithdrawalRepository{}
}

// CreateWithdrawal inserts a new pending withdrawal record using the provided DBExecutor.
func (r *WithdrawalRepository) CreateWithdrawal(ctx context.Context, q repository.DBExecutor, withdrawal *domain.WithdrawalTransaction) error {
	if withdrawal.Status != domain.TransactionStatusPending {
		return util.ErrInvalidTransition
	}

	query := `INSERT INTO withdrawal_transactions
              (id, user_id, amount, admin_fee, net_amount, e_wallet, e_wallet_number, recipient_name, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.ExecContext(ctx, query,
		withdrawal.ID, withdrawal.UserID, withdrawal.Amount, withdrawal.AdminFee, withdrawal.NetAmount,
		withdrawal.EWallet, withdrawal.EWalletNumber, withdrawal.RecipientName, withdrawal.Status, withdrawal.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateID
		}
		return storageErr("failed to create withdrawal", err)
	}
	return nil
}

// GetWithdrawalByID retrieves a withdrawal by its id using the provided DBExecutor.
func (r *WithdrawalRepository) GetWithdrawalByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.WithdrawalTransaction, error) {
	var withdrawal domain.WithdrawalTransaction
	query := `SELECT id, user_id, amount, admin_fee, net_amount, e_wallet, e_wallet_number, recipient_name, status, created_at
              FROM withdrawal_transactions WHERE id = $1`
	err := q.GetContext(ctx, &withdrawal, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, storageErr(fmt.Sprintf("failed to get withdrawal by id %s", id), err)
	}
	return &withdrawal, nil
}

// UpdateWithdrawalStatus transitions a pending withdrawal to a terminal status
// as a single atomic update; a zero row count is disambiguated by a follow-up
// read.
func (r *WithdrawalRepository) UpdateWithdrawalStatus(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus) error {
	if !domain.TransactionStatusPending.CanTransitionTo(status) {
		return util.ErrInvalidTransition
	}

	query := `UPDATE withdrawal_transactions SET status = $1 WHERE id = $2 AND status = $3`
	result, err := q.ExecContext(ctx, query, status, id, domain.TransactionStatusPending)
	if err != nil {
		return storageErr(fmt.Sprintf("failed to update withdrawal %s", id), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr(fmt.Sprintf("failed to get rows affected for withdrawal %s", id), err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetWithdrawalByID(ctx, q, id); err != nil {
			return err
		}
		return util.ErrInvalidTransition
	}
	return nil
}

// ListWithdrawalsByUser retrieves a user's withdrawals in insertion order.
func (r *WithdrawalRepository) ListWithdrawalsByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.WithdrawalTransaction, error) {
	withdrawals := []domain.WithdrawalTransaction{}
	query := `SELECT id, user_id, amount, admin_fee, net_amount, e_wallet, e_wallet_number, recipient_name, status, created_at
              FROM withdrawal_transactions WHERE user_id = $1 ORDER BY created_at ASC, id ASC`
	if err := q.SelectContext(ctx, &withdrawals, query, userID); err != nil {
		return nil, storageErr(fmt.Sprintf("failed to list withdrawals for user %s", userID), err)
	}
	return withdrawals, nil
}
