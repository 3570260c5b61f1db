//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || windows)

package settime

import "time"

func setClock(time.Time) error {
	return errUnsupported
}

func isPermissionError(error) bool {
	return false
}

func geteuid() int {
	return -1
}

func hasPermission() (bool, string) {
	return false, errUnsupported.Error()
}
