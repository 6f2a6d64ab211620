package gym

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gym.log")
	logger, cleanup := NewLogger(path)
	logger.Info("probe")
	cleanup()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("log file empty")
	}
}
