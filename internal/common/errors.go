// Package common defines shared constants and sentinel errors used across
// server layers of GophSocial. Callers should use errors.Is to match these
// values; operation-specific errors wrap one of the kinds below.
package common

import (
	"errors"
	"fmt"
)

var (
	// Error kinds. The HTTP layer maps each kind to a status code.
	ErrorInvalidRequest = errors.New("invalid request")
	ErrorNotFound       = errors.New("not found")
	ErrorUnauthorized   = errors.New("unauthorized")
	ErrorInternal       = errors.New("internal error")
	ErrorAlreadyExists  = fmt.Errorf("%w: already exists", ErrorInvalidRequest)

	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrorNotFound)

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrorUnauthorized)

	// Relationship errors.
	ErrSelfFollow = fmt.Errorf("%w: you cannot follow/unfollow yourself", ErrorInvalidRequest)

	// Profile update errors.
	ErrPasswordPairRequired = fmt.Errorf("%w: please provide both current password and new password", ErrorInvalidRequest)
	ErrIncorrectPassword    = fmt.Errorf("%w: current password is incorrect", ErrorInvalidRequest)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least 6 characters long", ErrorInvalidRequest)
	ErrInvalidImage         = fmt.Errorf("%w: invalid image", ErrorInvalidRequest)
)

// Message returns the human-readable part of err for client responses.
// Kind prefixes such as "invalid request: " are trimmed.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range []error{ErrorInvalidRequest, ErrorNotFound, ErrorUnauthorized, ErrorInternal} {
		prefix := kind.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
