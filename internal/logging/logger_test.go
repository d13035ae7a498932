package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidup/internal/config"
	"vidup/internal/logging"
	"vidup/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, "run-1")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("upload started", logging.String("file", "clip.mp4"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "vidup.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "upload started") || !strings.Contains(text, "file=clip.mp4") {
		t.Fatalf("unexpected log content: %q", text)
	}
	if !strings.Contains(text, "session_id=run-1") {
		t.Fatalf("expected session id in log, got %q", text)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersComponentAndTask(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "component.log")

	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithTaskID(context.Background(), "t1")
	ctx = services.WithRequestID(ctx, "req-9")
	component := logging.NewComponentLogger(logger, "session")
	logging.WithContext(ctx, component).Info("status received", logging.String("status", "processing"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO session [t1]: status received") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	if !strings.Contains(line, "correlation_id=req-9") || !strings.Contains(line, "status=processing") {
		t.Fatalf("missing attributes: %q", line)
	}
	if strings.Contains(line, "task_id=") {
		t.Fatalf("task id should be rendered in the prefix only: %q", line)
	}
}

func TestJSONLoggerEmitsStructuredFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "network unstable", "poll_retry", logging.Int("retry", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if payload["level"] != "warn" || payload["msg"] != "network unstable" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload[logging.FieldEventType] != "poll_retry" || payload[logging.FieldErrorHint] == nil {
		t.Fatalf("expected event defaults, got %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNilLoggersFallBackToNop(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "session")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected the fallback logger to discard output")
	}
	logging.WithContext(services.WithTaskID(context.Background(), "t1"), nil).Error("dropped")
	logging.WarnWithContext(nil, "dropped", "noop")
}
