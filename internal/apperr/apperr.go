// Package apperr classifies failures so that callers (HTTP, MCP, CLI) can
// surface them consistently.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified error.
	CodeUnknown Code = "UNKNOWN"
	// CodeNotFound is an unknown socket or node id.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidArgument is a bad caller input or malformed reference data.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeFatal means reference data could not be loaded at all.
	CodeFatal Code = "FATAL"
)

// Error is a classified error. Details carries optional context, such as the
// list of valid faction names.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFoundf returns a NOT_FOUND error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf returns an INVALID_ARGUMENT error.
func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Fatalf returns a FATAL error.
func Fatalf(format string, args ...any) *Error {
	return &Error{Code: CodeFatal, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code with a message prefix.
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithDetails attaches detail strings and returns e.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// CodeOf returns the code of the first classified error in err's chain.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// DetailsOf returns the details of the first classified error in err's chain.
func DetailsOf(err error) []string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Details
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
