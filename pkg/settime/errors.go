package settime

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodePermissionDenied    Code = "PERMISSION_DENIED"
	CodeSidecarNotInstalled Code = "SIDECAR_NOT_INSTALLED"
	CodeSidecarNotRunning   Code = "SIDECAR_NOT_RUNNING"
	CodeSidecarError        Code = "SIDECAR_ERROR"
	CodeUserCanceled        Code = "USER_CANCELED"
	CodeUnsupportedOS       Code = "UNSUPPORTED_OS"
	CodeExecError           Code = "EXEC_ERROR"
	CodeSetTimeError        Code = "SET_TIME_ERROR"
	CodeInvalidTimestamp    Code = "INVALID_TIMESTAMP"
	CodeTimeError           Code = "TIME_ERROR"
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

// ErrorCode lets the sidecar report the code back over the wire.
func (e *Error) ErrorCode() string {
	return string(e.Code)
}

func CodeOf(err error) Code {
	var setErr *Error
	if errors.As(err, &setErr) {
		return setErr.Code
	}
	return ""
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}
