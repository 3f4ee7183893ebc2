package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the cases that carry no extra detail.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

// PermissionError carries a machine-usable denial reason,
// e.g. "missing_permission" or "not_owner".
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "forbidden: " + e.Reason
}

func Forbidden(reason string) error {
	return &PermissionError{Reason: reason}
}

// ValidationError names the offending field so the caller can fix the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError marks a duplicate action against an entity whose state no
// longer permits it, e.g. deciding a connection that is not pending.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// Internal wraps an unexpected downstream failure. The wrapped error is kept
// for logs; HTTP mapping must not expose it to callers.
func Internal(err error) error {
	return fmt.Errorf("internal: %w", err)
}
