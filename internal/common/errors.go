// Package common defines sentinel errors and error types shared by the
// repositories, services and surfaces of the agenda module. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrMalformedRecord = errors.New("malformed record")

	// Service-level errors.
	ErrorInternal       = errors.New("internal error")
	ErrorValidation     = errors.New("validation error")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUserNotFound     = errors.New("user not found")

	// Registration errors.
	ErrUsernameTaken = errors.New("username already in use")
	ErrEmailTaken    = errors.New("email already in use")

	// Identity provider errors.
	ErrNotVerified = errors.New("email address not verified")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// StoreError reports a failed operation against the underlying store
// (network, permission, driver). Op names the repository operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err unless it is nil or already a domain sentinel
// (not found, malformed record, uniqueness) that callers match directly.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, s := range []error{ErrorNotFound, ErrMalformedRecord, ErrUsernameTaken, ErrEmailTaken} {
		if errors.Is(err, s) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}

// ProviderError is a normalized identity provider failure. Reason is one of
// the Reason* constants, Code is the provider's original code.
type ProviderError struct {
	Reason  string
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication error: " + e.Code
}

// Provider failure reasons.
const (
	ReasonEmailInUse          = "email-already-in-use"
	ReasonInvalidEmail        = "invalid-email"
	ReasonWeakPassword        = "weak-password"
	ReasonUserNotFound        = "user-not-found"
	ReasonWrongPassword       = "wrong-password"
	ReasonNetworkError        = "network-error"
	ReasonUserDisabled        = "user-disabled"
	ReasonOperationNotAllowed = "operation-not-allowed"
	ReasonInternalError       = "internal-error"
	ReasonUnknown             = "authentication-error"
)

// IsProviderReason reports whether err is a ProviderError with the given reason.
func IsProviderReason(err error, reason string) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Reason == reason
}
