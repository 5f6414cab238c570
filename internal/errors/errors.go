package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard
var (
	// Login errors
	ErrEmailRequired = errors.New("email is required")
	ErrUserNotFound  = errors.New("user not found")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInvalid  = errors.New("session invalid")
	ErrForbidden       = errors.New("forbidden")

	// Upstream errors
	ErrUpstream        = errors.New("upstream request failed")
	ErrInvalidResponse = errors.New("invalid upstream response")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNotFound       = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
