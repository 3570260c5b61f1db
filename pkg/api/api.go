// Package api exposes the command-style entry points used by the CLI and
// any other front end. Every call returns a value that serializes to JSON,
// whether it succeeded or not.
package api

import (
	"strconv"

	"github.com/AndrewLester/ntpstep/internal/config"
	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/pkg/ntp"
	"github.com/AndrewLester/ntpstep/pkg/ntpsync"
	"github.com/AndrewLester/ntpstep/pkg/settime"
	"github.com/AndrewLester/ntpstep/pkg/sidecar"
	"github.com/sirupsen/logrus"
)

type QueryResult struct {
	Success bool `json:"success"`
	*ntp.Measurement
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

type StepResult struct {
	settime.Result
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

type API struct {
	Client  *ntp.Client
	Syncer  *ntpsync.Syncer
	Stepper *settime.Stepper
	Sidecar *sidecar.Client

	SidecarBinaryPath  string
	SidecarServicePath string
}

// New wires every component from cfg.
func New(cfg *config.Config, log logrus.FieldLogger) (*API, error) {
	log = logging.OrDefault(log)

	client := ntp.NewClient(log)
	client.Port = strconv.Itoa(cfg.Port)
	client.Timeout = cfg.QueryTimeout
	client.DSCP = cfg.DSCP

	sidecarClient := sidecar.NewClient(cfg.Sidecar.Addr, log)
	sidecarClient.Timeout = cfg.Sidecar.Timeout
	sidecarClient.ProbeTimeout = cfg.Sidecar.ProbeTimeout

	binary, service := cfg.Sidecar.BinaryPath, cfg.Sidecar.ServicePath
	if binary == "" && service == "" {
		binary, service = sidecar.DefaultPaths()
	}

	setter, err := settime.New(cfg.Strategy, settime.Options{
		Sidecar:            sidecarClient,
		SidecarBinaryPath:  binary,
		SidecarServicePath: service,
	})
	if err != nil {
		return nil, err
	}

	syncer := ntpsync.NewSyncer(client, setter, log)
	syncer.Samples = cfg.Samples
	syncer.SampleInterval = cfg.SampleInterval
	syncer.VerifyDelay = cfg.VerifyDelay

	return &API{
		Client:             client,
		Syncer:             syncer,
		Stepper:            settime.NewStepper(setter, log),
		Sidecar:            sidecarClient,
		SidecarBinaryPath:  binary,
		SidecarServicePath: service,
	}, nil
}

func (a *API) QueryNTP(server string) *QueryResult {
	m, err := a.Client.Query(server)
	if err != nil {
		return &QueryResult{Error: err.Error(), Code: string(ntp.CodeOf(err))}
	}
	return &QueryResult{Success: true, Measurement: m}
}

func (a *API) SyncNTPTime(server string) *ntpsync.Outcome {
	return a.Syncer.Sync(server)
}

func (a *API) AdjustTimeByOffset(offsetMs float64) *StepResult {
	return stepResult(a.Stepper.AdjustByOffset(offsetMs))
}

func (a *API) SetSystemTime(unixMs float64) *StepResult {
	return stepResult(a.Stepper.SetAbsoluteTime(unixMs))
}

func (a *API) CheckTimePermission() settime.Permission {
	return settime.CheckPermission()
}

func (a *API) CheckSidecarStatus() sidecar.Status {
	return sidecar.CheckStatus(a.Sidecar, a.SidecarBinaryPath, a.SidecarServicePath)
}

func stepResult(result *settime.Result, err error) *StepResult {
	if err != nil {
		code := settime.CodeOf(err)
		if code == "" {
			code = settime.CodeSetTimeError
		}
		return &StepResult{
			Result: settime.Result{Message: err.Error()},
			Error:  err.Error(),
			Code:   string(code),
		}
	}
	return &StepResult{Result: *result}
}
