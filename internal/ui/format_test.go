package ui

import "testing"

func TestMillis(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.3456, "+12.346ms"},
		{-0.5, "-0.500ms"},
		{0, "0.000ms"},
	}
	for _, tt := range tests {
		if got := Millis(tt.in); got != tt.want {
			t.Errorf("Millis(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnixMillisZero(t *testing.T) {
	if got := UnixMillis(0); got != "-" {
		t.Errorf("UnixMillis(0) = %q, want -", got)
	}
}
