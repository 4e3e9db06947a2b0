// internal/domain/transaction.go
package domain

// TransactionStatus defines the lifecycle status of a ledger transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusConfirmed || s == TransactionStatusFailed
}

// CanTransitionTo reports whether a record in status s may move to target.
// The only legal moves are pending -> confirmed and pending -> failed.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	return s == TransactionStatusPending && target.IsTerminal()
}
