// Package apperror holds the error taxonomy shared by the gate, the stores
// and the HTTP handlers.
package apperror

import (
	"errors"
	"net/http"
)

var (
	// gate
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// per-text gate-secret; the caller still gets a redacted view
	ErrSecretRequired = errors.New("secret required")
	ErrSecretWrong    = errors.New("secret wrong")

	// store
	ErrNotFound = errors.New("not found")
	ErrStore    = errors.New("store error")

	ErrValidation = errors.New("validation error")
	ErrTooLarge   = errors.New("payload too large")
)

// IsRedaction reports whether err only signals a redacted read.
func IsRedaction(err error) bool {
	return errors.Is(err, ErrSecretRequired) || errors.Is(err, ErrSecretWrong)
}

// Status maps an error from the taxonomy to its HTTP status code.
// Unknown errors are treated as store failures.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated), IsRedaction(err):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrValidation }

// Validation returns an ErrValidation whose message is safe to show clients.
func Validation(msg string) error {
	return &validationError{msg: msg}
}
