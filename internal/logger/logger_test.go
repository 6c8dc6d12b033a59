package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("debug message", "pledge", 1)
	Info("info message")
	Warn("warn message", "error", "boom")
	Error("error message")
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	Debug("point read failed", "id", 7)
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// None of these should panic
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}

func TestInit_KeepsWarningsOnly(t *testing.T) {
	configDir := t.TempDir()
	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Info("refresh started")
	Warn("point read failed", "id", 4)

	data, err := os.ReadFile(Path(configDir))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "refresh started") {
		t.Errorf("info record written without debug: %q", got)
	}
	if !strings.Contains(got, "point read failed") || !strings.Contains(got, "id=4") {
		t.Errorf("warning missing from log: %q", got)
	}
}
