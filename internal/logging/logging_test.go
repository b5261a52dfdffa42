package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lao-tseu-is-alive/go-boids-flocking/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		for _, format := range []string{"console", "json"} {
			log, err := New(config.LoggingConfig{Level: tt.level, Format: format})
			if err != nil {
				t.Fatalf("New(%q, %q) error = %v", tt.level, format, err)
			}
			if !log.Core().Enabled(tt.want) {
				t.Errorf("New(%q, %q): level %v disabled", tt.level, format, tt.want)
			}
			if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
				t.Errorf("New(%q, %q): level %v should be disabled", tt.level, format, tt.want-1)
			}
		}
	}
}

func TestNewToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boids.log")
	log, err := NewToFile(config.LoggingConfig{Level: "info"}, path)
	if err != nil {
		t.Fatalf("NewToFile() error = %v", err)
	}
	log.Info("tick", zap.Int("agents", 101))
	log.Debug("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "tick" || entry["agents"] != float64(101) {
		t.Errorf("unexpected entry %v", entry)
	}
}
