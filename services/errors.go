package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a bearer token is missing, malformed, expired or unknown
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when a login email/password pair does not match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotConfigured marks an optional integration without credentials
	ErrNotConfigured = errors.New("integration not configured")
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
)

// ValidationError is a rejected request field. Message is safe to show to callers.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UpstreamError wraps a failure of the datastore or a third-party provider
type UpstreamError struct {
	Service string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(service, op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Service: service, Op: op, Err: err}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
