package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error so callers can react without string
// matching. Every error crossing a service boundary carries exactly one code.
type Code string

const (
	// CodeValidation marks malformed input: negative quantities, unknown
	// enum values, unit mismatches.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks input that fails parsing at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a missing factor or record. A not-found factor is
	// never reported as a zero result.
	CodeNotFound Code = "not_found"
	// CodeConflict marks writes rejected because of existing state.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks operations whose result is mathematically
	// undefined, such as target progress when baseline equals target.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks persistence and other infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It wraps an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is shorthand for HasCode; it reads better at call sites that branch on
// error kind.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
