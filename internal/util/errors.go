// internal/util/errors.go
package util

import "errors"

// Common application-specific errors. All are recoverable at the caller
// boundary; ErrStorageUnavailable marks transient storage faults and is kept
// distinct from domain validation errors so callers can retry only that class.
var (
	ErrInvalidInput             = errors.New("invalid input provided")
	ErrInvalidDestination       = errors.New("unrecognized e-wallet destination")
	ErrInvalidDestinationNumber = errors.New("e-wallet number too short")
	ErrBelowMinimum             = errors.New("amount below minimum withdrawal")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrNotFound                 = errors.New("resource not found")
	ErrDuplicateAccount         = errors.New("account already exists")
	ErrDuplicateID              = errors.New("transaction id already exists")
	ErrInvalidTransition        = errors.New("transaction already in terminal status")
	ErrInvalidBalance           = errors.New("balance must not be negative")
	ErrStorageUnavailable       = errors.New("storage unavailable")
)

// IsError reports whether err matches target in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
