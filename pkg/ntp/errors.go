package ntp

import (
	"errors"
	"fmt"
)

// Code identifies a query failure; the strings are part of the serialized result.
type Code string

const (
	CodeSocketBind    Code = "SOCKET_BIND"
	CodeSocketTimeout Code = "SOCKET_TIMEOUT"
	CodeSendError     Code = "SEND_ERROR"
	CodeRecvError     Code = "RECV_ERROR"
	CodeIncomplete    Code = "INCOMPLETE"
	CodeTimeError     Code = "TIME_ERROR"

	// CodeUnsynchronized marks a decoded reply that cannot be used for
	// timekeeping: a kiss-o'-death or missing server timestamps.
	CodeUnsynchronized Code = "UNSYNCHRONIZED"
)

type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the failure code from err, or "" if err is not an *Error.
func CodeOf(err error) Code {
	var ntpErr *Error
	if errors.As(err, &ntpErr) {
		return ntpErr.Code
	}
	return ""
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}
