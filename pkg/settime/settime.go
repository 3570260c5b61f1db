// Package settime steps the system clock. Each platform strategy is a
// TimeSetter; Stepper wraps one with validation and audit fields.
package settime

import (
	"math"
	"time"

	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/internal/ntp"
	"github.com/sirupsen/logrus"
)

// TimeSetter sets the wall clock to unixMs and returns a human-readable
// confirmation. Implementations hold no one-shot state, so repeating a call
// behaves the same as the first.
type TimeSetter interface {
	SetTime(unixMs float64) (string, error)
}

type Result struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	PreviousTime float64 `json:"previous_time"`
	NewTime      float64 `json:"new_time"`
	AdjustedMs   float64 `json:"adjusted_ms"`
}

type Stepper struct {
	Setter TimeSetter
	Now    func() time.Time

	log logrus.FieldLogger
}

func NewStepper(setter TimeSetter, log logrus.FieldLogger) *Stepper {
	return &Stepper{Setter: setter, Now: time.Now, log: logging.OrDefault(log)}
}

// SetAbsoluteTime sets the clock to unixMs.
func (s *Stepper) SetAbsoluteTime(unixMs float64) (*Result, error) {
	if math.IsNaN(unixMs) || math.IsInf(unixMs, 0) || unixMs <= 0 {
		return nil, newError(CodeInvalidTimestamp, "%v is not a valid Unix millisecond time", unixMs)
	}

	previous, err := s.nowMs()
	if err != nil {
		return nil, err
	}
	return s.step(previous, unixMs)
}

// AdjustByOffset moves the clock by offsetMs relative to now.
func (s *Stepper) AdjustByOffset(offsetMs float64) (*Result, error) {
	if math.IsNaN(offsetMs) || math.IsInf(offsetMs, 0) {
		return nil, newError(CodeInvalidTimestamp, "%v is not a valid offset", offsetMs)
	}

	previous, err := s.nowMs()
	if err != nil {
		return nil, err
	}
	target := previous + offsetMs
	if target <= 0 {
		return nil, newError(CodeInvalidTimestamp, "offset %vms moves the clock before the Unix epoch", offsetMs)
	}
	return s.step(previous, target)
}

func (s *Stepper) step(previous, target float64) (*Result, error) {
	log := s.log.WithFields(logrus.Fields{
		"previous_ms": previous,
		"target_ms":   target,
	})

	message, err := s.Setter.SetTime(target)
	if err != nil {
		log.WithError(err).WithField("code", CodeOf(err)).Warn("set time failed")
		return nil, err
	}

	// NewTime is read back from the clock so a setter that reports success
	// without moving it shows up in the result.
	now, err := s.nowMs()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Success:      true,
		Message:      message,
		PreviousTime: previous,
		NewTime:      now,
		AdjustedMs:   target - previous,
	}
	log.WithFields(logrus.Fields{
		"adjusted_ms": result.AdjustedMs,
		"new_ms":      now,
	}).Info("system time set")
	return result, nil
}

func (s *Stepper) nowMs() (float64, error) {
	now := s.Now()
	if now.Before(time.Unix(0, 0)) {
		return 0, newError(CodeTimeError, "local clock %s is before the Unix epoch", now)
	}
	return ntp.TimeToUnixMs(now), nil
}
