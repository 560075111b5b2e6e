package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorizedAccess indicates the Shopify API rejected the session's
// access token. The caller is expected to close the session and restart login.
var ErrUnauthorizedAccess = errors.New("unauthorized access")

// ValidationError reports a session field that fails the persistence
// invariants.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session validation failed: %s must not be empty", e.Field)
}

// IsValidationError reports whether err is a session validation failure.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
