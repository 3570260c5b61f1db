package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndRecent(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewDB error: %v", err)
	}
	defer db.Close()

	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Session: "a", Timestamp: base, Server: "time.google.com", ServerIP: "216.239.35.0", Offset: 12.5, Delay: 20, PostSyncOffset: 0.4, Samples: 5, Success: true},
		{Session: "b", Timestamp: base.Add(500 * time.Millisecond), Server: "pool.ntp.org", Offset: -3, Delay: 40, PostSyncOffset: -3, Samples: 4, Code: "PERMISSION_DENIED"},
		{Session: "c", Timestamp: base.Add(time.Minute), Server: "time.google.com", Offset: 1, Delay: 18, Samples: 5, Success: true},
	}
	for _, e := range entries {
		if err := db.Record(e); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	recent, err := db.Recent(2)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent returned %d entries, want 2", len(recent))
	}
	if recent[0].Session != "c" || recent[1].Session != "b" {
		t.Errorf("Recent order = %q, %q; want c, b", recent[0].Session, recent[1].Session)
	}

	got := recent[1]
	if got.Code != "PERMISSION_DENIED" || got.Success || got.Samples != 4 || got.ServerIP != "" {
		t.Errorf("entry b = %+v", got)
	}
	if !got.Timestamp.Equal(entries[1].Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, entries[1].Timestamp)
	}

	counts, err := db.Servers()
	if err != nil {
		t.Fatalf("Servers error: %v", err)
	}
	if counts["time.google.com"] != 2 || counts["pool.ntp.org"] != 1 {
		t.Errorf("Servers = %v", counts)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("NewDB error: %v", err)
	}
	if err := db.Record(Entry{Session: "x", Timestamp: time.Now(), Server: "s", Samples: 1, Success: true}); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	db.Close()

	db, err = NewDB(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close()

	recent, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(recent) != 1 || recent[0].Session != "x" {
		t.Errorf("Recent after reopen = %+v", recent)
	}
}
