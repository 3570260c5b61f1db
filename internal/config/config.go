package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "/etc/ntpstep.yaml"

type SidecarConfig struct {
	Addr         string        `yaml:"addr"`
	Timeout      time.Duration `yaml:"timeout"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	BinaryPath   string        `yaml:"binary_path"`
	ServicePath  string        `yaml:"service_path"`
}

type HistoryConfig struct {
	DBPath string `yaml:"db_path"` // empty disables history
}

type Config struct {
	Server         string        `yaml:"server"`
	Port           int           `yaml:"port"`
	Samples        int           `yaml:"samples"`
	SampleInterval time.Duration `yaml:"sample_interval"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`
	VerifyDelay    time.Duration `yaml:"verify_delay"`
	DSCP           uint8         `yaml:"dscp"`
	Strategy       string        `yaml:"strategy"` // auto, direct, root, elevate, sidecar
	SyncInterval   time.Duration `yaml:"sync_interval"`
	LogLevel       string        `yaml:"log_level"`
	History        HistoryConfig `yaml:"history"`
	Sidecar        SidecarConfig `yaml:"sidecar"`
}

func Default() *Config {
	return &Config{
		Server:         "time.google.com",
		Port:           123,
		Samples:        5,
		SampleInterval: 50 * time.Millisecond,
		QueryTimeout:   5 * time.Second,
		VerifyDelay:    100 * time.Millisecond,
		Strategy:       "auto",
		SyncInterval:   60 * time.Second,
		LogLevel:       "info",
		Sidecar: SidecarConfig{
			Addr:         "127.0.0.1:12345",
			Timeout:      2 * time.Second,
			ProbeTimeout: 500 * time.Millisecond,
		},
	}
}

// Load reads path over the defaults and applies env overrides. A missing
// file at DefaultPath is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	// Env overrides
	if server := os.Getenv("NTPSTEP_SERVER"); server != "" {
		cfg.Server = server
	}
	if addr := os.Getenv("NTPSTEP_SIDECAR_ADDR"); addr != "" {
		cfg.Sidecar.Addr = addr
	}
	if strategy := os.Getenv("NTPSTEP_STRATEGY"); strategy != "" {
		cfg.Strategy = strategy
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.Server == "":
		return errors.New("server must be set")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("port %d out of range", c.Port)
	case c.Samples < 1:
		return fmt.Errorf("samples must be at least 1, got %d", c.Samples)
	case c.DSCP > 63:
		return fmt.Errorf("dscp %d out of range 0-63", c.DSCP)
	case c.SyncInterval <= 0:
		return fmt.Errorf("sync_interval must be positive, got %s", c.SyncInterval)
	case c.QueryTimeout <= 0:
		return fmt.Errorf("query_timeout must be positive, got %s", c.QueryTimeout)
	case c.Sidecar.Timeout <= 0:
		return fmt.Errorf("sidecar.timeout must be positive, got %s", c.Sidecar.Timeout)
	case c.Sidecar.ProbeTimeout <= 0:
		return fmt.Errorf("sidecar.probe_timeout must be positive, got %s", c.Sidecar.ProbeTimeout)
	case c.SampleInterval < 0:
		return fmt.Errorf("sample_interval must not be negative, got %s", c.SampleInterval)
	case c.VerifyDelay < 0:
		return fmt.Errorf("verify_delay must not be negative, got %s", c.VerifyDelay)
	}
	return nil
}
