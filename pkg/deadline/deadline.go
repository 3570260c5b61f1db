// Package deadline lands a call on a chosen wall-clock instant with
// sub-millisecond overshoot.
package deadline

import (
	"math"
	"runtime"
	"time"
)

const (
	DefaultMinWait    = 5 * time.Millisecond
	DefaultMaxWait    = 2000 * time.Millisecond
	DefaultSpinMargin = 2 * time.Millisecond
)

type Clock interface {
	// Now returns the local wall clock in Unix milliseconds.
	Now() float64
	Sleep(d time.Duration)
}

type SystemClock struct{}

func (SystemClock) Now() float64 {
	return float64(time.Now().UnixNano()) / 1e6
}

func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// NextSecond picks the next whole second of corrected time (local + offset)
// and returns it together with the local instant at which the corrected
// clock reaches it. The target is always strictly in the future, so a
// corrected time sitting exactly on a boundary yields the following second.
func NextSecond(nowMs, offsetMs float64) (targetMs, waitUntilLocalMs float64) {
	correct := nowMs + offsetMs
	targetMs = (math.Floor(correct/1000) + 1) * 1000
	return targetMs, nowMs + (targetMs - correct)
}

type Scheduler struct {
	Clock Clock

	// Waits outside [MinWait, MaxWait] return immediately.
	MinWait    time.Duration
	MaxWait    time.Duration
	SpinMargin time.Duration
}

func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		Clock:      clock,
		MinWait:    DefaultMinWait,
		MaxWait:    DefaultMaxWait,
		SpinMargin: DefaultSpinMargin,
	}
}

// WaitUntil blocks until the clock reads at least deadlineMs. It reports
// false without waiting when the remaining time is outside the scheduling
// window.
func (s *Scheduler) WaitUntil(deadlineMs float64) bool {
	return s.Do(deadlineMs, nil)
}

// Do waits like WaitUntil and then calls fn on the same locked OS thread
// that spun, so nothing is rescheduled between the deadline and the call.
// fn runs even when the wait was skipped.
func (s *Scheduler) Do(deadlineMs float64, fn func()) bool {
	remaining := deadlineMs - s.Clock.Now()
	waited := remaining > ms(s.MinWait) && remaining < ms(s.MaxWait)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if waited {
			s.wait(deadlineMs)
		}
		if fn != nil {
			fn()
		}
	}()
	<-done
	return waited
}

func (s *Scheduler) wait(deadlineMs float64) {
	remaining := deadlineMs - s.Clock.Now()
	if sleep := remaining - ms(s.SpinMargin); sleep > 0 {
		s.Clock.Sleep(time.Duration(sleep * float64(time.Millisecond)))
	}
	for s.Clock.Now() < deadlineMs {
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
