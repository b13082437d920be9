package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DomainError represents a domain-level error.
// Two DomainErrors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState         = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock    = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrSchemaNotProvisioned = NewDomainError("SCHEMA_NOT_PROVISIONED", "Tenant schema has not been provisioned yet")
)

// SchemaNotProvisioned returns a retryable routing error for the given tenant
func SchemaNotProvisioned(tenantID string) *DomainError {
	return NewDomainError(ErrSchemaNotProvisioned.Code,
		fmt.Sprintf("schema for tenant %q has not been provisioned yet", tenantID))
}

// ConcurrencyConflict returns an optimistic locking error for the given aggregate
func ConcurrencyConflict(aggregateType, id string, expectedVersion int) *DomainError {
	return NewDomainError(ErrConcurrencyConflict.Code,
		fmt.Sprintf("%s %s was modified concurrently (expected version %d)", aggregateType, id, expectedVersion))
}

// ValidationError reports a malformed command, raised before any side effect
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewValidationError creates a validation error with optional field details
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRetryable reports whether the caller may retry the operation as is.
// Schema routing misses and optimistic lock conflicts are transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSchemaNotProvisioned) || errors.Is(err, ErrConcurrencyConflict)
}
