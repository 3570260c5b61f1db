package settime

import (
	"fmt"
	"runtime"

	"github.com/AndrewLester/ntpstep/pkg/sidecar"
)

const (
	StrategyAuto    = "auto"
	StrategyDirect  = "direct"
	StrategyRoot    = "root"
	StrategyElevate = "elevate"
	StrategySidecar = "sidecar"
)

type Options struct {
	Sidecar            *sidecar.Client
	SidecarBinaryPath  string
	SidecarServicePath string
}

// New returns the setter for strategy on the running platform.
func New(strategy string, opts Options) (TimeSetter, error) {
	return newForOS(runtime.GOOS, strategy, opts)
}

func newForOS(goos, strategy string, opts Options) (TimeSetter, error) {
	switch strategy {
	case "", StrategyAuto:
		return platformDefault(goos, opts), nil
	case StrategyDirect:
		return Direct{}, nil
	case StrategyRoot:
		return NewRootOnly(), nil
	case StrategyElevate:
		return &Escalating{First: Direct{}, Fallback: NewElevated()}, nil
	case StrategySidecar:
		if goos == "windows" {
			return nil, fmt.Errorf("strategy %q is not supported on windows, use %q", StrategySidecar, StrategyElevate)
		}
		return &Escalating{First: Direct{}, Fallback: sidecarSetter(opts)}, nil
	default:
		return nil, fmt.Errorf("unknown time-setting strategy %q", strategy)
	}
}

// platformDefault: Windows prompts for elevation, macOS goes through the
// sidecar, Linux requires root up front.
func platformDefault(goos string, opts Options) TimeSetter {
	switch goos {
	case "windows":
		return &Escalating{First: Direct{}, Fallback: NewElevated()}
	case "darwin":
		return &Escalating{First: Direct{}, Fallback: sidecarSetter(opts)}
	case "linux":
		return NewRootOnly()
	default:
		return Unsupported{GOOS: goos}
	}
}

func sidecarSetter(opts Options) *Sidecar {
	client := opts.Sidecar
	if client == nil {
		client = sidecar.NewClient(sidecar.DefaultAddr, nil)
	}
	binary, service := opts.SidecarBinaryPath, opts.SidecarServicePath
	if binary == "" && service == "" {
		binary, service = sidecar.DefaultPaths()
	}
	return &Sidecar{Client: client, BinaryPath: binary, ServicePath: service}
}

type Permission struct {
	HasPermission bool   `json:"has_permission"`
	Platform      string `json:"platform"`
	Message       string `json:"message"`
}

// CheckPermission reports whether a direct clock write can succeed.
func CheckPermission() Permission {
	ok, message := hasPermission()
	return Permission{HasPermission: ok, Platform: runtime.GOOS, Message: message}
}
