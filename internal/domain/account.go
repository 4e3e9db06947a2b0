// internal/domain/account.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a wallet user. Balance is kept in the smallest currency
// unit (IDR, no fractional digits) and is never negative; the only writer is
// the ledger service's balance-mutation step.
type Account struct {
	ID        string    `db:"id" json:"id"`                 // UUID, immutable
	Name      string    `db:"name" json:"name"`             // Display name
	Email     string    `db:"email" json:"email"`           // Unique, the external key used at login
	Balance   int64     `db:"balance" json:"balance"`       // Spendable funds, >= 0
	CreatedAt time.Time `db:"created_at" json:"created_at"` // Timestamp of creation, immutable
}

// NewAccount creates a new Account with a zero balance.
func NewAccount(name, email string) *Account {
	return &Account{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Balance:   0,
		CreatedAt: time.Now().UTC(),
	}
}
