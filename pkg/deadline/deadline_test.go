package deadline

import (
	"sync"
	"testing"
	"time"
)

// mockClock advances by tick on every Now and by the full duration on Sleep.
type mockClock struct {
	mu     sync.Mutex
	now    float64
	tick   float64
	slept  []time.Duration
	nowOps int
}

func (c *mockClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nowOps++
	now := c.now
	c.now += c.tick
	return now
}

func (c *mockClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now += float64(d) / float64(time.Millisecond)
}

func (c *mockClock) read() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func TestNextSecond(t *testing.T) {
	tests := []struct {
		name          string
		now, offset   float64
		wantTarget    float64
		wantWaitLocal float64
	}{
		{"clock behind", 10_000.0, 250.0, 11_000, 10_750},
		{"clock ahead", 10_400.0, -600.0, 10_000, 10_600},
		{"on boundary", 10_000.0, 0, 11_000, 11_000},
		{"just past boundary", 10_000.5, 999.5, 12_000, 11_000.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, waitLocal := NextSecond(tt.now, tt.offset)
			if target != tt.wantTarget {
				t.Errorf("target = %v, want %v", target, tt.wantTarget)
			}
			if waitLocal != tt.wantWaitLocal {
				t.Errorf("waitUntilLocal = %v, want %v", waitLocal, tt.wantWaitLocal)
			}
			if target <= tt.now+tt.offset {
				t.Errorf("target %v is not after corrected time %v", target, tt.now+tt.offset)
			}
		})
	}
}

func TestWaitUntilLandsOnDeadline(t *testing.T) {
	clock := &mockClock{now: 1_000_000, tick: 0.01}
	scheduler := NewScheduler(clock)

	deadline := clock.read() + 500
	if !scheduler.WaitUntil(deadline) {
		t.Fatal("WaitUntil skipped a 500ms wait")
	}

	landed := clock.read()
	if landed < deadline {
		t.Fatalf("returned at %v, before deadline %v", landed, deadline)
	}
	if overshoot := landed - deadline; overshoot >= 2 {
		t.Errorf("overshoot = %vms, want < 2ms", overshoot)
	}
	if len(clock.slept) != 1 {
		t.Fatalf("slept %d times, want 1", len(clock.slept))
	}
	if clock.slept[0] > 498*time.Millisecond {
		t.Errorf("slept %v, want at most remaining-2ms", clock.slept[0])
	}
}

func TestWaitUntilSkipsOutsideWindow(t *testing.T) {
	tests := []struct {
		name      string
		remaining float64
	}{
		{"already passed", -10},
		{"too close", 3},
		{"too far", 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &mockClock{now: 5_000}
			scheduler := NewScheduler(clock)

			if scheduler.WaitUntil(clock.read() + tt.remaining) {
				t.Error("WaitUntil waited, want skip")
			}
			if len(clock.slept) != 0 {
				t.Errorf("slept %v, want no sleep", clock.slept)
			}
		})
	}
}

func TestWaitUntilRealClock(t *testing.T) {
	if testing.Short() {
		t.Skip("uses the real clock")
	}
	scheduler := NewScheduler(nil)
	deadline := SystemClock{}.Now() + 50

	if !scheduler.WaitUntil(deadline) {
		t.Fatal("WaitUntil skipped a 50ms wait")
	}
	if now := (SystemClock{}).Now(); now < deadline {
		t.Errorf("returned %vms early", deadline-now)
	}
}

func TestDoRunsAfterDeadline(t *testing.T) {
	clock := &mockClock{now: 2_000, tick: 0.05}
	scheduler := NewScheduler(clock)

	var calledAt float64
	deadline := clock.read() + 800
	scheduler.Do(deadline, func() { calledAt = clock.read() })
	if calledAt < deadline {
		t.Errorf("fn ran at %v, before deadline %v", calledAt, deadline)
	}

	called := false
	if scheduler.Do(clock.read()+5000, func() { called = true }) {
		t.Error("Do waited for a deadline outside the window")
	}
	if !called {
		t.Error("fn not called when the wait was skipped")
	}
}
