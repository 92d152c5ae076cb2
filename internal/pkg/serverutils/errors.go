package serverutils

import "fmt"

// AppError carries an HTTP status and a user-safe message. The wrapped
// error stays internal; the middleware never serializes it.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInputError rejects invalid client input before any work is done.
func NewInputError(message string) *AppError {
	return &AppError{Code: 400, Message: message}
}

// NewProcessingError wraps an uncaught downstream failure. The caller
// sees only the generic message.
func NewProcessingError(err error) *AppError {
	return &AppError{Code: 500, Message: "Failed to process question. Please try again.", Err: err}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message}
}
