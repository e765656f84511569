package sui

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the ledger boundary. Callers classify failures
// with errors.Is; the HTTP layer maps each kind to a status code.
var (
	// ErrInvalidParameter marks caller-supplied values that fail validation.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrTransactionRejected marks a transaction the ledger executed but
	// did not apply (contract abort, insufficient authorization, bad input).
	ErrTransactionRejected = errors.New("transaction rejected")

	// ErrNotFound marks a queried object that does not exist on the ledger.
	ErrNotFound = errors.New("object not found")

	// ErrTransport marks node unavailability or a network-level failure.
	// Retryable from the caller's point of view.
	ErrTransport = errors.New("ledger transport failure")
)

// InvalidParameterf wraps ErrInvalidParameter with a formatted message.
func InvalidParameterf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidParameter}, args...)...)
}

// RequireField returns an ErrInvalidParameter when a required string field
// is empty.
func RequireField(name, value string) error {
	if value == "" {
		return InvalidParameterf("%s is required", name)
	}
	return nil
}
