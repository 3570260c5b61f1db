package settime

import (
	"errors"

	"github.com/AndrewLester/ntpstep/pkg/sidecar"
)

// Sidecar delegates the clock write to the privileged helper over loopback.
type Sidecar struct {
	Client      *sidecar.Client
	BinaryPath  string
	ServicePath string
}

func (s *Sidecar) SetTime(unixMs float64) (string, error) {
	if !sidecar.Installed(s.BinaryPath, s.ServicePath) {
		return "", newError(CodeSidecarNotInstalled, "sidecar is not installed at %s", s.BinaryPath)
	}

	response, err := s.Client.SetTime(unixMs)
	if err != nil {
		if errors.Is(err, sidecar.ErrNoResponse) {
			return "", &Error{Code: CodeSidecarNotRunning, Err: err}
		}
		return "", &Error{Code: CodeSidecarError, Err: err}
	}
	if !response.Success {
		reason := response.Error
		if reason == "" {
			reason = response.Message
		}
		return "", newError(CodeSidecarError, "sidecar refused: %s (%s)", reason, response.Message)
	}
	return response.Message, nil
}
