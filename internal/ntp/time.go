package ntp

import (
	"math"
	"time"
)

const (
	EraLength     int64   = 4_294_967_296 // 2^32
	UnixEraOffset int64   = 2_208_988_800 // 1970 - 1900 in seconds
	ShortLength   float64 = 65536         // 2^16
)

// TimestampToUnixMs converts a 64-bit NTP timestamp to Unix milliseconds.
// Zero and pre-1970 timestamps map to 0 rather than an error.
func TimestampToUnixMs(ts TimestampEncoded) float64 {
	return SecondsFractionToUnixMs(uint32(ts>>32), uint32(ts))
}

func SecondsFractionToUnixMs(seconds, fraction uint32) float64 {
	if seconds == 0 && fraction == 0 {
		return 0
	}
	if int64(seconds) < UnixEraOffset {
		return 0
	}
	unixSeconds := int64(seconds) - UnixEraOffset
	return float64(unixSeconds)*1000 + float64(fraction)*1000/float64(EraLength)
}

// UnixMsToTimestamp is the inverse of TimestampToUnixMs for times after 1970.
func UnixMsToTimestamp(unixMs float64) TimestampEncoded {
	seconds := math.Floor(unixMs / 1000)
	fraction := (unixMs - seconds*1000) / 1000 * float64(EraLength)
	return TimestampEncoded(int64(seconds)+UnixEraOffset)<<32 | TimestampEncoded(uint32(fraction))
}

// ShortToMs converts a 16.16 fixed-point seconds value to milliseconds.
func ShortToMs(s ShortEncoded) float64 {
	return float64(s) / ShortLength * 1000
}

func TimeToUnixMs(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e6
}

func UnixMsToTime(unixMs float64) time.Time {
	return time.Unix(0, int64(math.Round(unixMs*1e6)))
}
