package daemonize

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewPaths(t *testing.T) {
	dir := t.TempDir()
	d := New("ntpstepd", dir, dir, []string{"daemon", "--foreground"})

	if got, want := d.PidFile(), filepath.Join(dir, "ntpstepd.pid"); got != want {
		t.Errorf("PidFile = %q, want %q", got, want)
	}
	if args := d.ctx.Args; len(args) != 3 || args[0] != "ntpstepd" || args[1] != "daemon" {
		t.Errorf("Args = %v", args)
	}
}

func TestStopWithoutPidfile(t *testing.T) {
	dir := t.TempDir()
	d := New("ntpstepd", dir, dir, nil)

	err := d.Stop()
	if err == nil {
		t.Fatal("Stop succeeded with no pidfile")
	}
	if !strings.Contains(err.Error(), "not running") {
		t.Errorf("Stop error = %v, want not running", err)
	}
}

func TestIsChild(t *testing.T) {
	if IsChild() {
		t.Error("test process reports itself as a reborn daemon")
	}
}
