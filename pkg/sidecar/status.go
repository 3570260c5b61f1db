package sidecar

import "os"

type Status struct {
	Installed bool   `json:"installed"`
	Running   bool   `json:"running"`
	Message   string `json:"message"`
}

// Installed reports whether both the helper binary and its service
// descriptor are present.
func Installed(binaryPath, servicePath string) bool {
	return exists(binaryPath) && exists(servicePath)
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// CheckStatus combines the install check with a liveness probe.
func CheckStatus(client *Client, binaryPath, servicePath string) Status {
	status := Status{
		Installed: Installed(binaryPath, servicePath),
		Running:   client.Probe(),
	}
	switch {
	case status.Installed && status.Running:
		status.Message = "sidecar is installed and running"
	case status.Installed:
		status.Message = "sidecar is installed but not running"
	case status.Running:
		status.Message = "sidecar is running but not installed as a service"
	default:
		status.Message = "sidecar is not installed"
	}
	return status
}
