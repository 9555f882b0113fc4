package shared

import (
	"errors"
	"fmt"
)

// DomainError is a business rule violation identified by a stable code.
// The HTTP layer maps the code to a status; the message is shown to users.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// Is compares codes only, so errors.Is(err, ErrNotFound) matches any
// NOT_FOUND error whatever its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t != nil && e.Code == t.Code
}

// NewDomainError returns a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Errorf is NewDomainError with a formatted message.
func Errorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// AsDomainError finds the first DomainError in err's chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Shared error codes. Packages define their own codes for rules that only
// they enforce.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified concurrently")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Not allowed for this user")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Not allowed in the current state")
)
