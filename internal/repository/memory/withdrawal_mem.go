// internal/repository/memory/withdrawal_mem.go
package memory

import (
	"context"

	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/util"
)

// WithdrawalRepository implements repository.WithdrawalRepository on a Store.
type WithdrawalRepository struct {
	store *Store
}

// NewWithdrawalRepository creates a new in-memory WithdrawalRepository.
func NewWithdrawalRepository(store *Store) repository.WithdrawalRepository {
	return &WithdrawalRepository{store: store}
}

func (r *WithdrawalRepository) CreateWithdrawal(ctx context.Context, q repository.DBExecutor, withdrawal *domain.WithdrawalTransaction) error {
	if withdrawal.Status != domain.TransactionStatusPending {
		return util.ErrInvalidTransition
	}

	defer r.store.enter(q)()

	if _, exists := r.store.st.withdrawals[withdrawal.ID]; exists {
		return util.ErrDuplicateID
	}
	r.store.st.withdrawals[withdrawal.ID] = *withdrawal
	r.store.st.withdrawalOrder = append(r.store.st.withdrawalOrder, withdrawal.ID)
	return nil
}

func (r *WithdrawalRepository) GetWithdrawalByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.WithdrawalTransaction, error) {
	defer r.store.enter(q)()

	withdrawal, ok := r.store.st.withdrawals[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &withdrawal, nil
}

func (r *WithdrawalRepository) UpdateWithdrawalStatus(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus) error {
	defer r.store.enter(q)()

	withdrawal, ok := r.store.st.withdrawals[id]
	if !ok {
		return util.ErrNotFound
	}
	if !withdrawal.Status.CanTransitionTo(status) {
		return util.ErrInvalidTransition
	}
	withdrawal.Status = status
	r.store.st.withdrawals[id] = withdrawal
	return nil
}

func (r *WithdrawalRepository) ListWithdrawalsByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.WithdrawalTransaction, error) {
	defer r.store.enter(q)()

	result := []domain.WithdrawalTransaction{}
	for _, id := range r.store.st.withdrawalOrder {
		if withdrawal := r.store.st.withdrawals[id]; withdrawal.UserID == userID {
			result = append(result, withdrawal)
		}
	}
	return result, nil
}
