package dto

import "net/http"

// Error code constants for transport-level failures.
// Domain error codes (NOT_FOUND, CREDIT_LIMIT_EXCEEDED, ...) pass through
// to clients unchanged; these cover everything that never reaches a service.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when the owner scope is missing or invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrCodeNotFound mirrors the domain NOT_FOUND code for transport-level 404s
const ErrCodeNotFound = "NOT_FOUND"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Transport errors
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Domain errors -> 400 Bad Request (the caller sent something unusable)
	"INVALID_INPUT":  http.StatusBadRequest,
	"INVALID_AMOUNT": http.StatusBadRequest,

	// Domain errors -> 404 Not Found
	"NOT_FOUND": http.StatusNotFound,

	// Domain errors -> 409 Conflict
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"VERSION_CONFLICT":     http.StatusConflict,

	// Domain errors -> 422 Unprocessable Entity (valid request, rejected rule)
	"INVALID_STATE":               http.StatusUnprocessableEntity,
	"TYPE_MISMATCH":               http.StatusUnprocessableEntity,
	"CREDIT_LIMIT_EXCEEDED":       http.StatusUnprocessableEntity,
	"EXCEEDS_OUTSTANDING_DEBT":    http.StatusUnprocessableEntity,
	"INSUFFICIENT_RESERVE":        http.StatusUnprocessableEntity,
	"EXCEEDS_REMAINING_PRINCIPAL": http.StatusUnprocessableEntity,
	"OVERFLOW_ENVELOPE_MISSING":   http.StatusUnprocessableEntity,

	// Domain errors -> 500 (the ledger could not restore a consistent state)
	"UPDATE_ROLLBACK_FAILED": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
