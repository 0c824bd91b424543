package apperrors

import "fmt"

// Error codes returned to API clients.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Store error codes. The entity store translates driver failures into this
// stable taxonomy once; raw driver text never reaches a caller.
const (
	StoreCodeUniqueViolation     = "unique-violation"
	StoreCodeForeignKeyViolation = "foreign-key-violation"
	StoreCodeRequiredRelation    = "required-relation-violation"
	StoreCodeGeneric             = "store-error"
)

// ValidationError reports malformed or out-of-range input. It is
// user-correctable and maps to a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ReferenceError reports a cross-entity reference to a row that does not
// exist, such as assigning a task to an unknown user.
type ReferenceError struct {
	Message string
}

func (e *ReferenceError) Error() string {
	return e.Message
}

// StoreError wraps a persistence failure with a stable code. The cause is
// retained for server-side logging only.
type StoreError struct {
	Code  string
	cause error
}

func (e *StoreError) Error() string {
	return "store error: " + e.Code
}

func (e *StoreError) Unwrap() error {
	return e.cause
}

// NewStoreError creates a StoreError with the given code and cause.
func NewStoreError(code string, cause error) *StoreError {
	return &StoreError{Code: code, cause: cause}
}
