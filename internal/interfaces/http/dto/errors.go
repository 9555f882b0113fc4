package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Access error codes
const (
	// ErrCodeUnauthorized is used when the tenant header is missing or invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the actor lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTenantSuspended is used when the tenant cannot take new users
	ErrCodeTenantSuspended = "ERR_TENANT_SUSPENDED"
	// ErrCodeUserInactive is used when an inactive user tries to act
	ErrCodeUserInactive = "ERR_USER_INACTIVE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeTenantCodeExists is used when a tenant code is taken
	ErrCodeTenantCodeExists = "ERR_TENANT_CODE_EXISTS"
	// ErrCodeEmailExists is used when an email is taken within a tenant
	ErrCodeEmailExists = "ERR_EMAIL_EXISTS"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeRoleMismatch is used when a profile is written for a user of another role
	ErrCodeRoleMismatch = "ERR_ROLE_MISMATCH"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidCurrency is used for unknown ISO 4217 codes
	ErrCodeInvalidCurrency = "ERR_INVALID_CURRENCY"
	// ErrCodeUnknownDashboard is used for dashboard names that do not exist
	ErrCodeUnknownDashboard = "ERR_UNKNOWN_DASHBOARD"
	// ErrCodeInvalidFormat is used for unsupported export formats
	ErrCodeInvalidFormat = "ERR_INVALID_FORMAT"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Availability error codes
const (
	// ErrCodeExportUnavailable is used when no export storage is configured
	ErrCodeExportUnavailable = "ERR_EXPORT_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	// Access errors
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeTenantSuspended: http.StatusForbidden,
	ErrCodeUserInactive:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeTenantCodeExists:    http.StatusConflict,
	ErrCodeEmailExists:         http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,
	ErrCodeRoleMismatch: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidCurrency:  http.StatusBadRequest,
	ErrCodeUnknownDashboard: http.StatusNotFound,
	ErrCodeInvalidFormat:    http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,

	ErrCodeExportUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Domain validation codes (INVALID_*) that are not listed map to 400,
// everything else unknown to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"ROLE_MISMATCH":        ErrCodeRoleMismatch,
	"TENANT_CODE_EXISTS":   ErrCodeTenantCodeExists,
	"EMAIL_EXISTS":         ErrCodeEmailExists,
	"TENANT_SUSPENDED":     ErrCodeTenantSuspended,
	"USER_INACTIVE":        ErrCodeUserInactive,
	"INVALID_CURRENCY":     ErrCodeInvalidCurrency,
	"UNKNOWN_DASHBOARD":    ErrCodeUnknownDashboard,
	"INVALID_FORMAT":       ErrCodeInvalidFormat,
	"EXPORT_UNAVAILABLE":   ErrCodeExportUnavailable,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unmapped codes get the ERR_ prefix.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
