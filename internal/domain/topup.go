// internal/domain/topup.go
package domain

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// PresetTopUpAmounts are the amounts offered by the presentation layer as
// quick choices. They are a UI convenience only; any positive amount is
// accepted by the ledger.
var PresetTopUpAmounts = []int64{10000, 25000, 50000, 100000, 250000, 500000}

// TopUpTransaction represents a balance top-up request. The account is only
// credited when the transaction is confirmed.
type TopUpTransaction struct {
	ID              string            `db:"id" json:"id"`                             // UUID, primary key
	UserID          string            `db:"user_id" json:"user_id"`                   // Owning account
	Amount          int64             `db:"amount" json:"amount"`                     // Credited on confirmation
	ReferenceNumber string            `db:"reference_number" json:"reference_number"` // Human-displayable, unique
	Status          TransactionStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}

// NewTopUpTransaction creates a pending top-up with a fresh id and reference
// number.
func NewTopUpTransaction(userID string, amount int64) *TopUpTransaction {
	now := time.Now().UTC()
	return &TopUpTransaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		ReferenceNumber: NewReferenceNumber(now),
		Status:          TransactionStatusPending,
		CreatedAt:       now,
	}
}

const referenceSuffixCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReferenceNumber builds a reference of the form TU<unix-millis><5 random
// alphanumerics>. The suffix is not cryptographic; collision probability is
// negligible but non-zero, and the store's unique index is the backstop.
func NewReferenceNumber(t time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = referenceSuffixCharset[rand.IntN(len(referenceSuffixCharset))]
	}
	return fmt.Sprintf("TU%d%s", t.UnixMilli(), suffix)
}
