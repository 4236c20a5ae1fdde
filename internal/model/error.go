package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Error kinds. Domain errors and storage errors wrap one of these so callers
// can classify failures with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrStorageRead   = errors.New("storage read failed")
	ErrStorageWrite  = errors.New("storage write failed")
	ErrServiceClosed = errors.New("catalog service closed")
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	kind    error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the error kind so errors.Is(err, ErrValidation) matches.
func (e *DomainError) Unwrap() error {
	return e.kind
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, kind error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		kind:    kind,
	}
}

// Common domain errors
var (
	ErrCategoryAndNameRequired = NewDomainError(ErrCodeMissingField, "category and name required", ErrValidation)
	ErrProductNotFound         = NewDomainError(ErrCodeProductNotFound, "product not found", ErrNotFound)
)
