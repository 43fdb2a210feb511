// Package domain defines the core domain types for StackKV.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes have the form KV-<AREA>-<NNNN>; the numeric part mirrors the
// closest HTTP status.
type DomainError struct {
	Code    string // Error code (e.g., "KV-KEY-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
// Two DomainErrors match when their codes are equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Command Errors (CMD)
// ============================================================================

var (
	// ErrInvalidCommand indicates an unknown verb, a wrong argument count,
	// or a frame that could not be parsed.
	ErrInvalidCommand = NewDomainError("KV-CMD-4000", "invalid command")

	// ErrFrameTooLarge indicates a command frame exceeded the size limit.
	// It is reported to clients as ErrInvalidCommand.
	ErrFrameTooLarge = NewDomainError("KV-CMD-4130", "command frame too large")
)

// ============================================================================
// Key Errors (KEY)
// ============================================================================

var (
	// ErrKeyNotFound indicates the key is absent from the visible scope.
	ErrKeyNotFound = NewDomainError("KV-KEY-4040", "key not found")
)

// ============================================================================
// Transaction Errors (TXN)
// ============================================================================

var (
	// ErrNoActiveTransaction indicates COMMIT or ROLLBACK without an open
	// transaction for the session.
	ErrNoActiveTransaction = NewDomainError("KV-TXN-4090", "no active transaction")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalStore indicates an unexpected fault inside the store.
	ErrInternalStore = NewDomainError("KV-STORE-5000", "internal store error")

	// ErrRateLimited indicates the connection exceeded its command rate.
	ErrRateLimited = NewDomainError("KV-RATE-4290", "rate limit exceeded")
)
