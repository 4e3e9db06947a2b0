// internal/events/publisher.go
package events

import (
	"context"
	"time"

	"qrispay-ledger/internal/domain"
)

// Publisher emits transaction lifecycle events after they are committed.
// Publishing is best-effort from the ledger's point of view: a failed publish
// never fails the originating call.
type Publisher interface {
	Publish(ctx context.Context, event any) error
	Close() error
}

// TopUpSettled is emitted when a top-up reaches a terminal status.
type TopUpSettled struct {
	TransactionID   string                   `json:"transaction_id"`
	UserID          string                   `json:"user_id"`
	Amount          int64                    `json:"amount"`
	ReferenceNumber string                   `json:"reference_number"`
	Status          domain.TransactionStatus `json:"status"`
	OccurredAt      time.Time                `json:"occurred_at"`
}

// WithdrawalSettled is emitted when a withdrawal reaches a terminal status.
type WithdrawalSettled struct {
	TransactionID string                   `json:"transaction_id"`
	UserID        string                   `json:"user_id"`
	Amount        int64                    `json:"amount"`
	AdminFee      int64                    `json:"admin_fee"`
	NetAmount     int64                    `json:"net_amount"`
	EWallet       string                   `json:"e_wallet"`
	Status        domain.TransactionStatus `json:"status"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

// NoopPublisher discards all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event any) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }
