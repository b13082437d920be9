package dto

import "net/http"

// Error codes returned in the error envelope
const (
	ErrCodeInternal             = "ERR_INTERNAL"
	ErrCodeValidation           = "ERR_VALIDATION"
	ErrCodeInvalidJSON          = "ERR_INVALID_JSON"
	ErrCodeUnauthorized         = "ERR_UNAUTHORIZED"
	ErrCodeTenantRequired       = "ERR_TENANT_REQUIRED"
	ErrCodeNotFound             = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists        = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict  = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeSchemaNotProvisioned = "ERR_SCHEMA_NOT_PROVISIONED"
	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock    = "ERR_INSUFFICIENT_STOCK"
	ErrCodeBusinessRule         = "ERR_BUSINESS_RULE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:             http.StatusInternalServerError,
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,
	ErrCodeUnauthorized:         http.StatusUnauthorized,
	ErrCodeTenantRequired:       http.StatusBadRequest,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeSchemaNotProvisioned: http.StatusServiceUnavailable,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are business rule violations.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}

// DomainErrorCodeMapping maps domain error codes onto API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"SCHEMA_NOT_PROVISIONED": ErrCodeSchemaNotProvisioned,
	"INVALID_STATE":          ErrCodeInvalidState,
	"INSUFFICIENT_STOCK":     ErrCodeInsufficientStock,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes without a dedicated mapping become ErrCodeBusinessRule.
func NormalizeErrorCode(code string) string {
	if c, ok := DomainErrorCodeMapping[code]; ok {
		return c
	}
	return ErrCodeBusinessRule
}
