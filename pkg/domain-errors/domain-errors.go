// Package domainerrors carries the portal's transport-agnostic failure codes.
// Services return *Error; httputil maps codes to statuses at the edge.
package domainerrors

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeInternal     Code = "internal_error"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// CodePolicyViolation rejects a well-formed request the rules do not
	// allow, such as applying to a scheme the citizen is not eligible for.
	CodePolicyViolation Code = "policy_violation"

	// CodeInvalidTransition covers terminal states and disallowed role/target
	// combinations. CodeConcurrencyConflict means the caller acted on a stale status.
	CodeInvalidTransition   Code = "invalid_transition"
	CodeConcurrencyConflict Code = "concurrency_conflict"
)

// Error is a coded failure. Message is shown to the caller verbatim.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an error with code and a caller-facing message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and msg to err. An existing domain code wins over code.
func Wrap(err error, code Code, msg string) error {
	if existing := CodeOf(err); existing != "" {
		code = existing
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the first domain code in err's chain, or "" when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries code. Errors without a domain code
// never match, not even the empty code.
func HasCode(err error, code Code) bool {
	got := CodeOf(err)
	return got != "" && got == code
}
