package api

import (
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AndrewLester/ntpstep/internal/config"
	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/pkg/ntpsync"
	"github.com/AndrewLester/ntpstep/pkg/settime"
)

type stubSetter struct{ err error }

func (s stubSetter) SetTime(float64) (string, error) { return "done", s.err }

func newTestAPI(t *testing.T, setter settime.TimeSetter) *API {
	t.Helper()
	cfg := config.Default()
	cfg.QueryTimeout = 100 * time.Millisecond
	cfg.Sidecar.ProbeTimeout = 100 * time.Millisecond
	cfg.Sidecar.BinaryPath = filepath.Join(t.TempDir(), "missing")
	cfg.Sidecar.Addr = closedAddr(t)

	a, err := New(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if setter != nil {
		a.Stepper = settime.NewStepper(setter, logging.Discard())
		a.Stepper.Now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	}
	return a
}

func closedAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	return conn.LocalAddr().String()
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy = "magic"
	if _, err := New(cfg, logging.Discard()); err == nil {
		t.Error("New accepted an unknown strategy")
	}
}

func TestQueryNTPFailureIsSerializable(t *testing.T) {
	a := newTestAPI(t, nil)
	_, port, _ := net.SplitHostPort(closedAddr(t))
	a.Client.Port = port

	result := a.QueryNTP("127.0.0.1")
	if result.Success || result.Code == "" {
		t.Fatalf("result = %+v, want coded failure", result)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(encoded), `"success":false`) || !strings.Contains(string(encoded), `"code":"`) {
		t.Errorf("encoded = %s", encoded)
	}
}

func TestSetSystemTime(t *testing.T) {
	a := newTestAPI(t, stubSetter{})

	result := a.SetSystemTime(1_700_000_002_000)
	if !result.Success || result.AdjustedMs != 2000 || result.Code != "" {
		t.Errorf("result = %+v", result)
	}

	// stubSetter leaves the frozen clock alone, so NewTime stays put.
	result = a.AdjustTimeByOffset(-500)
	if !result.Success || result.AdjustedMs != -500 || result.NewTime != 1_700_000_000_000 {
		t.Errorf("result = %+v", result)
	}
}

func TestSetSystemTimeFailures(t *testing.T) {
	a := newTestAPI(t, stubSetter{err: &settime.Error{Code: settime.CodeUserCanceled, Err: errors.New("declined")}})
	if result := a.SetSystemTime(1_700_000_002_000); result.Success || result.Code != "USER_CANCELED" {
		t.Errorf("result = %+v, want USER_CANCELED", result)
	}

	a = newTestAPI(t, stubSetter{err: errors.New("plain")})
	if result := a.AdjustTimeByOffset(10); result.Code != "SET_TIME_ERROR" {
		t.Errorf("Code = %q, want SET_TIME_ERROR", result.Code)
	}

	if result := a.SetSystemTime(-1); result.Code != "INVALID_TIMESTAMP" {
		t.Errorf("Code = %q, want INVALID_TIMESTAMP", result.Code)
	}
}

func TestCheckSidecarStatusNotInstalled(t *testing.T) {
	status := newTestAPI(t, nil).CheckSidecarStatus()
	if status.Installed || status.Running || status.Message == "" {
		t.Errorf("status = %+v", status)
	}
}

func TestSyncNTPTimeAllFail(t *testing.T) {
	a := newTestAPI(t, nil)
	_, port, _ := net.SplitHostPort(closedAddr(t))
	a.Client.Port = port
	a.Syncer.Samples = 2
	a.Syncer.Setter = stubSetter{}

	outcome := a.SyncNTPTime("127.0.0.1")
	if outcome.Success || outcome.Code != ntpsync.CodeNTPError {
		t.Errorf("outcome = %+v, want NTP_ERROR", outcome)
	}
}

func TestCheckTimePermission(t *testing.T) {
	permission := newTestAPI(t, nil).CheckTimePermission()
	if permission.Platform == "" || permission.Message == "" {
		t.Errorf("permission = %+v", permission)
	}
}
