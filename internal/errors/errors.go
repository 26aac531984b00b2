package errors

import (
	"errors"
	"fmt"
)

// Common error types for the subscription client
var (
	// Session errors
	ErrMissingRefreshToken = errors.New("missing refresh token")
	ErrNoAccessToken       = errors.New("no access token")
	ErrNotAuthenticated    = errors.New("not logged in")

	// Storage errors
	ErrKeyNotFound = errors.New("key not found")
	ErrSealed      = errors.New("storage is encrypted and could not be opened")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
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
