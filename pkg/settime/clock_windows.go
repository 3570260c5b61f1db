//go:build windows

package settime

import (
	"errors"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procSetSystemTime = kernel32.NewProc("SetSystemTime")
)

func setClock(t time.Time) error {
	utc := t.UTC()
	systemTime := windows.Systemtime{
		Year:         uint16(utc.Year()),
		Month:        uint16(utc.Month()),
		DayOfWeek:    uint16(utc.Weekday()),
		Day:          uint16(utc.Day()),
		Hour:         uint16(utc.Hour()),
		Minute:       uint16(utc.Minute()),
		Second:       uint16(utc.Second()),
		Milliseconds: uint16(utc.Nanosecond() / int(time.Millisecond)),
	}

	r1, _, err := procSetSystemTime.Call(uintptr(unsafe.Pointer(&systemTime)))
	if r1 == 0 {
		return err
	}
	return nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, windows.ERROR_ACCESS_DENIED) || errors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD)
}

func geteuid() int {
	return -1
}

func hasPermission() (bool, string) {
	if windows.GetCurrentProcessToken().IsElevated() {
		return true, "running as administrator"
	}
	return false, "administrator privileges are required; each sync will show a UAC prompt"
}
