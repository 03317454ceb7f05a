package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals that a requested entity does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals that the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput signals malformed or out-of-range input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadySubmitted signals that a test result already exists for the registration.
	ErrAlreadySubmitted = errors.New("test already submitted")
)

// ValidationError carries per-field validation messages for a submitted form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// GatewayError wraps a payment-provider failure. Retryable errors (network,
// timeout, provider 5xx) are absorbed by reconciliation as "no authoritative
// status this attempt"; non-retryable ones (bad credentials, bad request)
// surface to the caller.
type GatewayError struct {
	Retryable bool
	Err       error
}

func (e *GatewayError) Error() string {
	kind := "non-retryable"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("payment gateway error (%s): %v", kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
