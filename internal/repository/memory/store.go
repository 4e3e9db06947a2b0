// internal/repository/memory/store.go
package memory

import (
	"context"
	"database/sql"
	"sync"

	"qrispay-ledger/internal/domain"
	"qrispay-ledger/internal/repository"
	"qrispay-ledger/internal/util"
	"qrispay-ledger/pkg/db"
)

// Store is the in-memory storage backend. It mirrors the logical layout of
// the persisted state: accounts by id with an email index, plus one ordered
// collection per transaction kind. All records are stored by value so a
// snapshot is a plain copy of the maps.
type Store struct {
	mu sync.Mutex
	st state
}

type state struct {
	accounts        map[string]domain.Account
	emailIndex      map[string]string // email -> account id
	topUps          map[string]domain.TopUpTransaction
	topUpOrder      []string
	withdrawals     map[string]domain.WithdrawalTransaction
	withdrawalOrder []string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		st: state{
			accounts:    make(map[string]domain.Account),
			emailIndex:  make(map[string]string),
			topUps:      make(map[string]domain.TopUpTransaction),
			withdrawals: make(map[string]domain.WithdrawalTransaction),
		},
	}
}

func (s *state) clone() state {
	cp := state{
		accounts:        make(map[string]domain.Account, len(s.accounts)),
		emailIndex:      make(map[string]string, len(s.emailIndex)),
		topUps:          make(map[string]domain.TopUpTransaction, len(s.topUps)),
		topUpOrder:      append([]string(nil), s.topUpOrder...),
		withdrawals:     make(map[string]domain.WithdrawalTransaction, len(s.withdrawals)),
		withdrawalOrder: append([]string(nil), s.withdrawalOrder...),
	}
	for k, v := range s.accounts {
		cp.accounts[k] = v
	}
	for k, v := range s.emailIndex {
		cp.emailIndex[k] = v
	}
	for k, v := range s.topUps {
		cp.topUps[k] = v
	}
	for k, v := range s.withdrawals {
		cp.withdrawals[k] = v
	}
	return cp
}

// BeginTx starts a unit of work holding the store lock until Commit or
// Rollback. Rollback restores the pre-transaction snapshot, so a failed
// multi-write operation has no visible effect, matching the SQL backend.
func (s *Store) BeginTx(ctx context.Context) (db.TxController, error) {
	s.mu.Lock()
	snapshot := s.st.clone()
	return &Tx{store: s, snapshot: snapshot}, nil
}

// Tx is the in-memory TxController. It also satisfies repository.DBExecutor
// so it can travel through the same code paths as *sqlx.Tx; the SQL-shaped
// methods are never invoked by the memory repositories.
type Tx struct {
	store    *Store
	snapshot state
	done     bool
}

// Commit makes the writes performed under this transaction permanent.
func (t *Tx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

// Rollback restores the snapshot taken at BeginTx.
func (t *Tx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.st = t.snapshot
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return util.ErrStorageUnavailable
}

func (t *Tx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return util.ErrStorageUnavailable
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, util.ErrStorageUnavailable
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return &sql.Row{}
}

// enter acquires the store lock unless q is a transaction already holding it.
// It returns the function releasing whatever was acquired.
func (s *Store) enter(q repository.DBExecutor) func() {
	if tx, ok := q.(*Tx); ok && tx.store == s && !tx.done {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

var _ db.TxController = (*Tx)(nil)
var _ repository.DBExecutor = (*Tx)(nil)
