package livegraph

import (
	"fmt"
)

type ErrorCode string

const (
	BadRequest   ErrorCode = "bad-request"
	InvalidNode  ErrorCode = "invalid-node"
	NotFound     ErrorCode = "not-found"
	NotAvailable ErrorCode = "not-available"
	UnknownError ErrorCode = "unknown-error"
)

type ErrorInfo struct {
	Code    ErrorCode // machine-readble ErrorCode enumeration
	Message string    // human-readable debug message
}

func (e *ErrorInfo) Error() string {
	return string(e.Message)
}

func NewErr(code ErrorCode, format string, args ...any) error {
	return &ErrorInfo{Code: code, Message: fmt.Sprintf(format, args...)}
}

func IsInvalidNodeError(err error) bool {
	return IsError(err, InvalidNode)
}

func IsNotFoundError(err error) bool {
	return IsError(err, NotFound)
}

func IsError(err error, ofType ErrorCode) bool {
	if e, ok := err.(*ErrorInfo); ok {
		return e.Code == ofType
	}
	return false
}
