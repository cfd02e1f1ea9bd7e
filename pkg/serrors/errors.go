package serrors

import "fmt"

// BaseError is a coded error suitable for stable machine matching across
// layers. Code is stable; Message is human-readable.
type BaseError struct {
	Code    string
	Message string
}

func NewError(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
