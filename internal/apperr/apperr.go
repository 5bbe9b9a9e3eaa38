// Package apperr defines the error taxonomy shared by the roomshare services.
// Services return these sentinels (possibly wrapped); callers match with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated           = errors.New("not authenticated")
	ErrNoActiveHouse              = errors.New("no active house")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate unique invite code")
	ErrTransactionFailed          = errors.New("transaction failed")
	ErrSubscription               = errors.New("subscription error")

	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Invalid returns an ErrInvalidInput carrying a field-specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Transaction wraps err as an ErrTransactionFailed while keeping the cause matchable.
func Transaction(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
}
