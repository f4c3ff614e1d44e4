// Package errors provides domain-specific error types and sentinel errors
// shared by storage, the Messenger client and the REST API.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates the caller is not allowed to perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates the write collides with an existing record.
	ErrConflict = errors.New("conflict")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthError reports a rejected credential: webhook verify token,
// webhook signature or API bearer token.
type AuthError struct {
	Scheme string
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed (%s): %s", e.Scheme, e.Reason)
}

// Unwrap lets errors.Is match ErrForbidden.
func (e *AuthError) Unwrap() error {
	return ErrForbidden
}

// NewAuthError creates a new auth error.
func NewAuthError(scheme, reason string) *AuthError {
	return &AuthError{Scheme: scheme, Reason: reason}
}

// ExternalCallError represents a failed outbound HTTP call (Graph API,
// crawler targets, object storage).
type ExternalCallError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *ExternalCallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s failed (url=%s, status=%d): %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed (url=%s): %v", e.Op, e.URL, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// NewExternalCallError creates a new external call error.
func NewExternalCallError(op, url string, statusCode int, err error) *ExternalCallError {
	return &ExternalCallError{Op: op, URL: url, StatusCode: statusCode, Err: err}
}

// IsExternal reports whether err came from an outbound call.
func IsExternal(err error) bool {
	var ext *ExternalCallError
	return errors.As(err, &ext)
}
