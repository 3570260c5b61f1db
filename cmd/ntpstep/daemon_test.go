package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/AndrewLester/ntpstep/internal/history"
	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/pkg/ntp"
	"github.com/AndrewLester/ntpstep/pkg/ntpsync"
)

type countingQuerier struct {
	mu    sync.Mutex
	calls int
}

func (q *countingQuerier) Query(string) (*ntp.Measurement, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	return nil, &ntp.Error{Code: ntp.CodeSocketTimeout, Err: errors.New("no reply")}
}

func (q *countingQuerier) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

type noopSetter struct{}

func (noopSetter) SetTime(float64) (string, error) { return "", nil }

func TestSyncLoopRunsOnStartupAndTrigger(t *testing.T) {
	querier := &countingQuerier{}
	syncer := ntpsync.NewSyncer(querier, noopSetter{}, logging.Discard())
	syncer.Samples = 1
	syncer.Sleep = func(time.Duration) {}

	ctx, cancel := context.WithCancel(context.Background())
	trigger := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- syncLoop(ctx, syncer, "s", time.Hour, trigger, logging.Discard()) }()

	waitFor(t, func() bool { return querier.count() >= 1 })
	trigger <- syscall.SIGHUP
	waitFor(t, func() bool { return querier.count() >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("syncLoop returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("syncLoop did not stop after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHistoryRows(t *testing.T) {
	rows := historyRows([]history.Entry{
		{Timestamp: time.Now(), Server: "a", Offset: 1.5, Samples: 5, Success: true},
		{Timestamp: time.Now(), Server: "b", Offset: -2, Samples: 3, Code: "SIDECAR_NOT_RUNNING"},
	})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][2] != "+1.500ms" || rows[0][6] != "ok" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1][6] != "SIDECAR_NOT_RUNNING" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestServersFooter(t *testing.T) {
	got := serversFooter(map[string]int{"b.example": 2, "a.example": 2, "time.google.com": 7})
	want := "time.google.com: 7  a.example: 2  b.example: 2"
	if got != want {
		t.Errorf("serversFooter = %q, want %q", got, want)
	}
	if got := serversFooter(nil); got != "" {
		t.Errorf("serversFooter(nil) = %q, want empty", got)
	}
}

func TestSyncModelProgress(t *testing.T) {
	m := syncModel{steps: 4}
	next, _ := m.Update(syncProgressMessage{Stage: ntpsync.StageSample, Err: errors.New("x")})
	m = next.(syncModel)
	if m.done != 1 || m.failures != 1 {
		t.Errorf("done/failures = %d/%d, want 1/1", m.done, m.failures)
	}

	outcome := &ntpsync.Outcome{Success: true}
	next, cmd := m.Update(syncDoneMessage(outcome))
	if next.(syncModel).outcome != outcome || cmd == nil {
		t.Error("done message did not finish the model")
	}
}
