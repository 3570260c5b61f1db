package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ntpstep.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server: pool.ntp.org
samples: 7
sample_interval: 20ms
strategy: sidecar
dscp: 46
history:
  db_path: /var/lib/ntpstep/history.db
sidecar:
  addr: 127.0.0.1:23456
  timeout: 1s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server != "pool.ntp.org" {
		t.Errorf("Server = %q, want %q", cfg.Server, "pool.ntp.org")
	}
	if cfg.Samples != 7 || cfg.SampleInterval != 20*time.Millisecond {
		t.Errorf("Samples/SampleInterval = %d/%v", cfg.Samples, cfg.SampleInterval)
	}
	if cfg.Strategy != "sidecar" || cfg.DSCP != 46 {
		t.Errorf("Strategy/DSCP = %q/%d", cfg.Strategy, cfg.DSCP)
	}
	if cfg.History.DBPath != "/var/lib/ntpstep/history.db" {
		t.Errorf("History.DBPath = %q", cfg.History.DBPath)
	}
	if cfg.Sidecar.Addr != "127.0.0.1:23456" || cfg.Sidecar.Timeout != time.Second {
		t.Errorf("Sidecar = %+v", cfg.Sidecar)
	}

	// Unset keys keep their defaults.
	if cfg.Port != 123 || cfg.QueryTimeout != 5*time.Second || cfg.Sidecar.ProbeTimeout != 500*time.Millisecond {
		t.Errorf("defaults lost: port %d, query_timeout %v, probe_timeout %v", cfg.Port, cfg.QueryTimeout, cfg.Sidecar.ProbeTimeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "server: pool.ntp.org\n")

	t.Setenv("NTPSTEP_SERVER", "time.cloudflare.com")
	t.Setenv("NTPSTEP_SIDECAR_ADDR", "127.0.0.1:9999")
	t.Setenv("NTPSTEP_STRATEGY", "root")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server != "time.cloudflare.com" || cfg.Sidecar.Addr != "127.0.0.1:9999" || cfg.Strategy != "root" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load succeeded for a missing explicit file")
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, content := range []string{
		"samples: 0\n",
		"port: 70000\n",
		"dscp: 64\n",
		"server: [not, a, string]\n",
		"query_timeout: 0s\n",
		"query_timeout: -1s\n",
		"sidecar:\n  timeout: 0s\n",
		"sidecar:\n  probe_timeout: -500ms\n",
		"sample_interval: -50ms\n",
		"verify_delay: -1ms\n",
	} {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("Load accepted %q", content)
		}
	}
}

func TestLoadAllowsZeroDelays(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sample_interval: 0s\nverify_delay: 0s\n"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.SampleInterval != 0 || cfg.VerifyDelay != 0 {
		t.Errorf("SampleInterval/VerifyDelay = %s/%s, want 0/0", cfg.SampleInterval, cfg.VerifyDelay)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.Server != "time.google.com" || cfg.Samples != 5 || cfg.Sidecar.Addr != "127.0.0.1:12345" {
		t.Errorf("Default = %+v", cfg)
	}
}
