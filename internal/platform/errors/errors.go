// Package errors is the coded error type shared by every layer
// import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for callers and for the HTTP layer
// the numeric values go over the wire, append only
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	// ErrorCodeUnavailable marks a transient dependency failure, the caller may retry
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	// ErrorCodeConflict is a state clash such as a fingerprint already reserved
	ErrorCodeConflict
	ErrorCodeUnauthorized
	ErrorCodeForbidden
	ErrorCodeInvalidArgument
	// ErrorCodeValidation is a request that failed field validation
	ErrorCodeValidation
	// ErrorCodeJSON is a body that did not decode
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	// ErrorCodeDB is a storage failure that retrying will not fix
	ErrorCodeDB
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeDuplicateKey:    http.StatusConflict,
	ErrorCodeConflict:        http.StatusConflict,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeForbidden:       http.StatusForbidden,
	ErrorCodeTooManyRequests: http.StatusTooManyRequests,
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
}

// HTTPStatusCode maps c to a response status; anything unmapped is a 500
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error carries a code, a message and optionally the offending field,
// the operation that failed and the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the error body the API sends
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return e.msg + ": " + e.orig.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.orig }

// Code returns the classification
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input field, "" when none
func (e *Error) Field() string { return e.field }

// Op returns the operation label set by WithOp
func (e *Error) Op() string { return e.op }

// ToWire drops the cause; it never leaves the process
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom renders any error; foreign errors become ErrorCodeUnknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root follows Unwrap to the innermost cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns err's code, ErrorCodeUnknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus is HTTPStatusCode(CodeOf(err))
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WithField returns a copy of err naming field; foreign errors pass through
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp returns a copy of err labeled with op; foreign errors pass through
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap codes orig without losing it for errors.Is
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func JSONErrf(format string, a ...any) error      { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(ErrorCodePanic, format, a...) }
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }
