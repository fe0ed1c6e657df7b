package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"campusnav/pkg/config"
)

func TestInitWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	cleanup, err := Init(&config.LogConfig{
		Server: config.LogSettings{Path: logPath, Level: "INFO"},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	slog.Info("probe message", "key", "value")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty after Info")
	}
}

func TestInitRotatesExisting(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")
	if err := os.WriteFile(logPath, []byte("previous run"), 0o644); err != nil {
		t.Fatal(err)
	}

	cleanup, err := Init(&config.LogConfig{
		Server: config.LogSettings{Path: logPath, Level: "DEBUG"},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer cleanup()

	old, err := os.ReadFile(logPath + ".old")
	if err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	if string(old) != "previous run" {
		t.Errorf("rotated content = %q", old)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
