// internal/repository/memory/account_mem.go
package memory

import (
	"context"

	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/util"
)

// AccountRepository implements repository.AccountRepository on a Store.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new in-memory AccountRepository.
func NewAccountRepository(store *Store) repository.AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	defer r.store.enter(q)()

	if _, exists := r.store.st.emailIndex[account.Email]; exists {
		return util.ErrDuplicateAccount
	}
	if _, exists := r.store.st.accounts[account.ID]; exists {
		return util.ErrDuplicateAccount
	}
	r.store.st.accounts[account.ID] = *account
	r.store.st.emailIndex[account.Email] = account.ID
	return nil
}

func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Account, error) {
	defer r.store.enter(q)()

	account, ok := r.store.st.accounts[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &account, nil
}

func (r *AccountRepository) GetAccountByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.Account, error) {
	defer r.store.enter(q)()

	id, ok := r.store.st.emailIndex[email]
	if !ok {
		return nil, util.ErrNotFound
	}
	account := r.store.st.accounts[id]
	return &account, nil
}

func (r *AccountRepository) SetBalance(ctx context.Context, q repository.DBExecutor, id string, newBalance int64) error {
	if newBalance < 0 {
		return util.ErrInvalidBalance
	}

	defer r.store.enter(q)()

	account, ok := r.store.st.accounts[id]
	if !ok {
		return util.ErrNotFound
	}
	account.Balance = newBalance
	r.store.st.accounts[id] = account
	return nil
}
