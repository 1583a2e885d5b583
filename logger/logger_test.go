package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "multi.log")

	log, err := New(true, file)
	if err != nil {
		t.Fatalf("New() = %v; want nil", err)
	}
	log.Debug("roster loaded", zap.String("team", "Perth Scorchers"))
	_ = log.Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("os.ReadFile() failed: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"roster loaded"`) {
		t.Fatalf("log file missing entry, got %q", data)
	}
	if !strings.Contains(string(data), `"team":"Perth Scorchers"`) {
		t.Fatalf("log file missing field, got %q", data)
	}
}

func TestNewInfoLevelDropsDebug(t *testing.T) {
	log, err := New(false, "")
	if err != nil {
		t.Fatalf("New() = %v; want nil", err)
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Fatal("debug entries should be disabled outside debug mode")
	}
}
