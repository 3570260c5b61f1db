package settime

import (
	"errors"
	"fmt"

	"github.com/AndrewLester/ntpstep/internal/ntp"
)

var errUnsupported = errors.New("setting the clock is not implemented on this platform")

// Direct calls the OS clock-set primitive in-process. Access errors come
// back as PERMISSION_DENIED so an Escalating setter can try its fallback.
type Direct struct{}

func (Direct) SetTime(unixMs float64) (string, error) {
	t := ntp.UnixMsToTime(unixMs)
	if err := setClock(t); err != nil {
		switch {
		case errors.Is(err, errUnsupported):
			return "", &Error{Code: CodeUnsupportedOS, Err: err}
		case isPermissionError(err):
			return "", &Error{Code: CodePermissionDenied, Err: err}
		default:
			return "", &Error{Code: CodeSetTimeError, Err: err}
		}
	}
	return fmt.Sprintf("system time set to %s", t.UTC().Format("2006-01-02T15:04:05.000Z")), nil
}

// RootOnly fails fast unless the process runs as root, so background syncs
// never block on a password prompt.
type RootOnly struct {
	Setter TimeSetter
	Euid   func() int
}

func NewRootOnly() *RootOnly {
	return &RootOnly{Setter: Direct{}, Euid: geteuid}
}

func (r *RootOnly) SetTime(unixMs float64) (string, error) {
	if r.Euid() != 0 {
		return "", newError(CodePermissionDenied, "root privileges are required to set the system time")
	}
	return r.Setter.SetTime(unixMs)
}

// Escalating tries First and falls back to Fallback only when First is
// refused for lack of privilege.
type Escalating struct {
	First    TimeSetter
	Fallback TimeSetter
}

func (e *Escalating) SetTime(unixMs float64) (string, error) {
	message, err := e.First.SetTime(unixMs)
	if err == nil || CodeOf(err) != CodePermissionDenied {
		return message, err
	}
	return e.Fallback.SetTime(unixMs)
}

type Unsupported struct {
	GOOS string
}

func (u Unsupported) SetTime(float64) (string, error) {
	return "", newError(CodeUnsupportedOS, "no time-setting strategy for %s", u.GOOS)
}
