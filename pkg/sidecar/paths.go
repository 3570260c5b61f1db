package sidecar

import "runtime"

// DefaultPaths returns where the installer puts the helper binary and its
// service descriptor on this platform.
func DefaultPaths() (binaryPath, servicePath string) {
	return defaultPaths(runtime.GOOS)
}

func defaultPaths(goos string) (string, string) {
	switch goos {
	case "darwin":
		return "/usr/local/bin/ntpstep-sidecar", "/Library/LaunchDaemons/com.ntpstep.sidecar.plist"
	case "linux":
		return "/usr/local/bin/ntpstep-sidecar", "/etc/systemd/system/ntpstep-sidecar.service"
	default:
		// No installer ships the sidecar on Windows; elevation covers it there.
		return "", ""
	}
}
