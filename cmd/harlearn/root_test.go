package main

import (
	"testing"

	"github.com/sigmotion/harlearn/pkg/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want log.Level
	}{
		{"debug", log.LevelDebug},
		{"info", log.LevelInfo},
		{"INFO", log.LevelInfo},
		{"warn", log.LevelWarn},
		{"error", log.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.name)
		if err != nil {
			t.Errorf("parseLevel(%q) failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := parseLevel("verbose"); err == nil {
		t.Error("parseLevel(verbose) should fail")
	}
}

func TestNewLogProvider(t *testing.T) {
	for _, format := range []string{"console", "json", "CONSOLE"} {
		provider, err := newLogProvider(format)
		if err != nil {
			t.Errorf("newLogProvider(%q) failed: %v", format, err)
			continue
		}
		if provider == nil {
			t.Errorf("newLogProvider(%q) returned nil provider", format)
		}
	}

	if _, err := newLogProvider("xml"); err == nil {
		t.Error("newLogProvider(xml) should fail")
	}
}

func TestMissingRequiredFlags(t *testing.T) {
	if _, err := runCommand(t, "train"); err == nil {
		t.Error("train without --data should fail")
	}
	if _, err := runCommand(t, "inspect"); err == nil {
		t.Error("inspect without --data should fail")
	}
	if _, err := runCommand(t, "predict", "--data", "x.csv"); err == nil {
		t.Error("predict without --model should fail")
	}
	if _, err := runCommand(t, "predict", "--model", "m.gob"); err == nil {
		t.Error("predict without --data should fail")
	}
}
