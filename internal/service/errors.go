// Package service implements the application's domain operations on top of
// the repository layer: token issuance and validation, account lifecycle
// and owner-scoped task management. Handlers stay thin and translate the
// sentinel errors defined here into HTTP statuses.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/task-manager-api/internal/repository"
)

// ErrValidation wraps every input or constraint violation. The wrapped
// message is safe to surface to the client.
var ErrValidation = errors.New("validation failed")

// ErrAuthFailed is returned on bad login credentials. It deliberately
// carries no detail: unknown email and wrong password are identical to
// the caller.
var ErrAuthFailed = errors.New("unable to login")

// ErrInvalidToken is returned when a presented token cannot be accepted,
// whether it is malformed, forged, expired, revoked or its user is gone.
// The causes are indistinguishable on purpose.
var ErrInvalidToken = errors.New("invalid token")

// invalidf builds a client-safe validation error.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// isEmailTaken reports whether err is the unique-email violation.
func isEmailTaken(err error) bool { return errors.Is(err, repository.ErrEmailExists) }

// isNotFound reports whether err is the missing-user sentinel.
func isNotFound(err error) bool { return errors.Is(err, repository.ErrUserNotFound) }
