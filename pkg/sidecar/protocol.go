// Package sidecar implements the loopback datagram protocol between the
// unprivileged process and the privileged helper that writes the clock.
//
// Each exchange is one JSON request datagram and one JSON response datagram.
// There is no authentication: anything that can reach the loopback port may
// ask for a clock write.
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	DefaultAddr         = "127.0.0.1:12345"
	DefaultTimeout      = 2 * time.Second
	DefaultProbeTimeout = 500 * time.Millisecond
	BufferSize          = 1024
)

// Error codes carried in Response.Error.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeSetTimeError   = "SET_TIME_ERROR"
)

// Request asks the sidecar to set the clock to UnixMs. A request without
// unix_ms is a liveness probe and never touches the clock.
type Request struct {
	UnixMs *float64 `json:"unix_ms,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

var errProbe = errors.New("probe request carries no unix_ms")

func NewRequest(unixMs float64) Request {
	return Request{UnixMs: &unixMs}
}

// DecodeRequest parses and validates one request datagram.
func DecodeRequest(datagram []byte) (Request, error) {
	var request Request
	if len(datagram) == 0 {
		return request, errors.New("empty datagram")
	}
	if err := json.Unmarshal(datagram, &request); err != nil {
		return request, fmt.Errorf("decode request: %w", err)
	}
	if request.UnixMs == nil {
		return request, errProbe
	}
	if ms := *request.UnixMs; math.IsNaN(ms) || math.IsInf(ms, 0) || ms <= 0 {
		return request, fmt.Errorf("unix_ms %v is not a positive finite time", ms)
	}
	return request, nil
}
