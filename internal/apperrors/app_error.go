package apperrors

import (
	"errors"
	"fmt"
)

// AppError is a structured error carrying an HTTP-ish status code, a
// human-readable message, an optional cause and an optional context map.
// Callers and the audit trail receive the message plus context, never a bare
// stack trace.
type AppError struct {
	Code    int
	Message string
	Err     error
	Context map[string]any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a generic AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewValidationError flags bad caller input. Never retried automatically.
func NewValidationError(message string, context map[string]any) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation, Context: context}
}

// NewAuthorityViolationError flags a caller that is not permitted to mutate the
// target model. Always audited as a security-relevant event by the caller.
func NewAuthorityViolationError(message string, context map[string]any) *AppError {
	return &AppError{Code: 403, Message: message, Err: ErrAuthorityViolation, Context: context}
}

// NewIdempotencyError flags inconsistent duplicate-detection bookkeeping.
func NewIdempotencyError(message string, context map[string]any) *AppError {
	return &AppError{Code: 500, Message: message, Err: ErrIdempotency, Context: context}
}

// NewConcurrencyError flags lock timeouts/contention. Safe to retry.
func NewConcurrencyError(message string, context map[string]any) *AppError {
	return &AppError{Code: 409, Message: message, Err: ErrConcurrency, Context: context}
}

// NewQuarantineError flags an operational quarantine failure.
func NewQuarantineError(message string, context map[string]any) *AppError {
	return &AppError{Code: 500, Message: message, Err: ErrQuarantine, Context: context}
}

// NewGovernanceError flags an operational repair/governance failure.
func NewGovernanceError(message string, context map[string]any) *AppError {
	return &AppError{Code: 500, Message: message, Err: ErrGovernance, Context: context}
}

// ContextOf extracts the context map from an error chain, or nil.
func ContextOf(err error) map[string]any {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Context
	}
	return nil
}
