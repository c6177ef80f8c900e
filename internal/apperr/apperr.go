package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for transport mapping. Validation messages
// reach the caller verbatim; upstream detail stays server-side.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindStateConflict
	KindUpstream
	KindCalendarNotConnected
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func StateConflict(message string) *Error {
	return &Error{Kind: KindStateConflict, Message: message}
}

func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

func CalendarNotConnected(message string) *Error {
	return &Error{Kind: KindCalendarNotConnected, Message: message}
}

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindStateConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCalendarNotConnected:
		return http.StatusExpectationFailed
	default:
		return http.StatusInternalServerError
	}
}
