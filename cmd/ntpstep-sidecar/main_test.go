package main

import "testing"

func TestCheckRoot(t *testing.T) {
	if err := checkRoot(0, "darwin"); err != nil {
		t.Errorf("root rejected: %v", err)
	}
	if err := checkRoot(501, "darwin"); err == nil {
		t.Error("non-root accepted on darwin")
	}
	if err := checkRoot(-1, "windows"); err != nil {
		t.Errorf("windows rejected: %v", err)
	}
}
