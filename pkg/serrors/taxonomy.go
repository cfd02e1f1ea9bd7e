package serrors

import "fmt"

// Canonical failure categories shared by all services. Controllers map these
// to HTTP statuses; callers match on Code.
const (
	CodeNotFound             = "NOT_FOUND"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeValidation           = "VALIDATION_ERROR"
	CodeReferentialIntegrity = "REFERENTIAL_INTEGRITY"
	CodeTransientFault       = "TRANSIENT_FAULT"
)

func NewNotFoundError(entity string) *BaseError {
	return NewError(CodeNotFound, fmt.Sprintf("%s not found", entity))
}

func NewPermissionDeniedError(message string) *BaseError {
	return NewError(CodePermissionDenied, message)
}

func NewUnauthorizedError(message string) *BaseError {
	return NewError(CodeUnauthorized, message)
}

// NewReferentialIntegrityError reports a write that referenced a row the
// caller cannot see or that does not exist.
func NewReferentialIntegrityError(message string) *BaseError {
	return NewError(CodeReferentialIntegrity, message)
}

// NewTransientFaultError reports an infrastructure failure the client may
// retry, such as a dropped connection or an upstream timeout.
func NewTransientFaultError(message string) *BaseError {
	return NewError(CodeTransientFault, message)
}
