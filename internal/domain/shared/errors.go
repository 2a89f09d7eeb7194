package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
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
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes for the posting path. Each precondition failure in the posting
// and reversal engines surfaces one of these, never a generic error.
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeInvalidAmount             = "INVALID_AMOUNT"
	CodeInvalidInput              = "INVALID_INPUT"
	CodeTypeMismatch              = "TYPE_MISMATCH"
	CodeCreditLimitExceeded       = "CREDIT_LIMIT_EXCEEDED"
	CodeExceedsOutstandingDebt    = "EXCEEDS_OUTSTANDING_DEBT"
	CodeInsufficientReserve       = "INSUFFICIENT_RESERVE"
	CodeExceedsRemainingPrincipal = "EXCEEDS_REMAINING_PRINCIPAL"
	CodeOverflowEnvelopeMissing   = "OVERFLOW_ENVELOPE_MISSING"
	CodeUpdateRollbackFailed      = "UPDATE_ROLLBACK_FAILED"
	CodeVersionConflict           = "VERSION_CONFLICT"
)
