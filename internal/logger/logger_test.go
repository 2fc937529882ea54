package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type logRecord struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	// Use JSON handler for easier parsing in tests
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	testLogger := slog.New(handler)

	originalLogger := Logger
	Logger = testLogger
	defer func() { Logger = originalLogger }()

	tests := []struct {
		name  string
		fn    func(msg string, args ...any)
		level string
		msg   string
	}{
		{
			name:  "Info",
			fn:    Info,
			level: "INFO",
			msg:   "info message",
		},
		{
			name:  "Error",
			fn:    Error,
			level: "ERROR",
			msg:   "error message",
		},
		{
			name:  "Warn",
			fn:    Warn,
			level: "WARN",
			msg:   "warn message",
		},
		{
			name:  "Debug",
			fn:    Debug,
			level: "DEBUG",
			msg:   "debug message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg)

			var rec logRecord
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("failed to unmarshal log output: %v", err)
			}

			if rec.Msg != tt.msg {
				t.Errorf("expected msg %q, got %q", tt.msg, rec.Msg)
			}
			if rec.Level != tt.level {
				t.Errorf("expected level %q, got %q", tt.level, rec.Level)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	if Logger == nil {
		t.Error("Logger should be initialized")
	}
}

func TestInit_WritesToFile(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	path := filepath.Join(t.TempDir(), "nested", "app.log")
	closer, err := Init(path, false)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	Info("fetch finished", "rows", 3)
	Debug("hidden at info level")

	if err := closer.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "fetch finished") || !strings.Contains(out, "rows=3") {
		t.Errorf("log file missing info record: %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Error("debug record written at info level")
	}
}

func TestInit_DebugLevel(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	path := filepath.Join(t.TempDir(), "debug.log")
	closer, err := Init(path, true)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer closer.Close()

	if !Logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}

func TestInit_EmptyPathDiscards(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	closer, err := Init("", false)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	Info("goes nowhere")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	originalLogger := Logger
	Logger = slog.New(slog.NewJSONHandler(&buf, nil))
	defer func() { Logger = originalLogger }()

	With("load_id", "abc").Info("loaded")
	if !strings.Contains(buf.String(), `"load_id":"abc"`) {
		t.Errorf("missing attribute in %q", buf.String())
	}
}
