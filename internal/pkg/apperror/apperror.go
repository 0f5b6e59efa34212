// Package apperror defines business-rule violations: expected, user-facing
// failures that carry a stable code and a readable message. Any error that is
// not an *Error is treated as a system fault.
package apperror

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "ALLOCATION_CONFLICT"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	CodeBlocked           = "CLIENT_BLOCKED"
	CodePayment           = "PAYMENT_ERROR"
)

type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy so package-level sentinels stay immutable.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// As unwraps err to a business error, if there is one in the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsBusiness(err error) bool {
	_, ok := As(err)
	return ok
}

func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
