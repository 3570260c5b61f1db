package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevel(t *testing.T) {
	t.Setenv("DEBUG", "")
	t.Setenv("INFO", "")

	if got := New("warn").GetLevel(); got != logrus.WarnLevel {
		t.Errorf("New(warn) level = %v, want %v", got, logrus.WarnLevel)
	}
	if got := New("bogus").GetLevel(); got != logrus.InfoLevel {
		t.Errorf("New(bogus) level = %v, want %v", got, logrus.InfoLevel)
	}
}

func TestNewEnvOverride(t *testing.T) {
	t.Setenv("DEBUG", "1")

	if got := New("error").GetLevel(); got != logrus.DebugLevel {
		t.Errorf("New(error) with DEBUG=1 level = %v, want %v", got, logrus.DebugLevel)
	}
}
