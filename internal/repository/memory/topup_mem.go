// internal/repository/memory/topup_mem.go
package memory

import (
	"context"

	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/util"
)

// TopUpRepository implements repository.TopUpRepository on a Store.
type TopUpRepository struct {
	store *Store
}

// NewTopUpRepository creates a new in-memory TopUpRepository.
func NewTopUpRepository(store *Store) repository.TopUpRepository {
	return &TopUpRepository{store: store}
}

func (r *TopUpRepository) CreateTopUp(ctx context.Context, q repository.DBExecutor, topUp *domain.TopUpTransaction) error {
	if topUp.Status != domain.TransactionStatusPending {
		return util.ErrInvalidTransition
	}

	defer r.store.enter(q)()

	if _, exists := r.store.st.topUps[topUp.ID]; exists {
		return util.ErrDuplicateID
	}
	r.store.st.topUps[topUp.ID] = *topUp
	r.store.st.topUpOrder = append(r.store.st.topUpOrder, topUp.ID)
	return nil
}

func (r *TopUpRepository) GetTopUpByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.TopUpTransaction, error) {
	defer r.store.enter(q)()

	topUp, ok := r.store.st.topUps[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &topUp, nil
}

func (r *TopUpRepository) UpdateTopUpStatus(ctx context.Context, q repository.DBExecutor, id string, status domain.TransactionStatus) error {
	defer r.store.enter(q)()

	topUp, ok := r.store.st.topUps[id]
	if !ok {
		return util.ErrNotFound
	}
	if !topUp.Status.CanTransitionTo(status) {
		return util.ErrInvalidTransition
	}
	topUp.Status = status
	r.store.st.topUps[id] = topUp
	return nil
}

func (r *TopUpRepository) ListTopUpsByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.TopUpTransaction, error) {
	defer r.store.enter(q)()

	result := []domain.TopUpTransaction{}
	for _, id := range r.store.st.topUpOrder {
		if topUp := r.store.st.topUps[id]; topUp.UserID == userID {
			result = append(result, topUp)
		}
	}
	return result, nil
}
