package ui

import (
	"strconv"
	"time"
)

// Millis formats a millisecond quantity with an explicit sign.
func Millis(ms float64) string {
	s := strconv.FormatFloat(ms, 'f', 3, 64) + "ms"
	if ms > 0 {
		s = "+" + s
	}
	return s
}

// UnixMillis formats a Unix millisecond timestamp in local time.
func UnixMillis(ms float64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(int64(ms)).Format("2006-01-02 15:04:05.000")
}
