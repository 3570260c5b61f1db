//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package settime

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

func setClock(t time.Time) error {
	timeVal := unix.NsecToTimeval(t.UnixNano())
	return unix.Settimeofday(&timeVal)
}

func isPermissionError(err error) bool {
	return errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES)
}

func geteuid() int {
	return unix.Geteuid()
}

func hasPermission() (bool, string) {
	if euid := geteuid(); euid != 0 {
		return false, fmt.Sprintf("root privileges are required to set the system time (euid %d)", euid)
	}
	return true, "running as root"
}
