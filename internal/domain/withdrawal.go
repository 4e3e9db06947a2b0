// internal/domain/withdrawal.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinWithdrawalAmount is the smallest gross amount a withdrawal may request,
// in the smallest currency unit. The boundary is inclusive.
const MinWithdrawalAmount int64 = 10000

// MinEWalletNumberLength is the shortest accepted destination number.
const MinEWalletNumberLength = 10

// EWallet describes a recognized withdrawal destination provider.
type EWallet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EWallets is the catalog of recognized destination providers.
var EWallets = []EWallet{
	{ID: "dana", Name: "Dana"},
	{ID: "ovo", Name: "OVO"},
	{ID: "gopay", Name: "GoPay"},
	{ID: "shopeepay", Name: "ShopeePay"},
	{ID: "linkaja", Name: "LinkAja"},
}

// IsRecognizedEWallet reports whether id names a provider in the catalog.
func IsRecognizedEWallet(id string) bool {
	for _, w := range EWallets {
		if w.ID == id {
			return true
		}
	}
	return false
}

// WithdrawalTransaction represents a payout request to an external e-wallet.
// AdminFee and NetAmount are fixed at creation from the fee percentage in
// effect at that moment and never recomputed.
type WithdrawalTransaction struct {
	ID            string            `db:"id" json:"id"`                         // UUID, primary key
	UserID        string            `db:"user_id" json:"user_id"`               // Owning account
	Amount        int64             `db:"amount" json:"amount"`                 // Gross, as requested
	AdminFee      int64             `db:"admin_fee" json:"admin_fee"`           // Derived at creation
	NetAmount     int64             `db:"net_amount" json:"net_amount"`         // Amount - AdminFee
	EWallet       string            `db:"e_wallet" json:"e_wallet"`             // Destination provider tag
	EWalletNumber string            `db:"e_wallet_number" json:"e_wallet_number"`
	RecipientName string            `db:"recipient_name" json:"recipient_name"`
	Status        TransactionStatus `db:"status" json:"status"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

// NewWithdrawalTransaction creates a pending withdrawal with the fee already
// applied.
func NewWithdrawalTransaction(userID string, amount, adminFee int64, eWallet, eWalletNumber, recipientName string) *WithdrawalTransaction {
	return &WithdrawalTransaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		AdminFee:      adminFee,
		NetAmount:     amount - adminFee,
		EWallet:       eWallet,
		EWalletNumber: eWalletNumber,
		RecipientName: recipientName,
		Status:        TransactionStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}
