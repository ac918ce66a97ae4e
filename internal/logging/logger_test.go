package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ndarimport/internal/config"
	"ndarimport/internal/logging"
	"ndarimport/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "console"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Debug("debug message")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
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

func TestConsoleLoggerRendersComponentAndContext(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithSubjectKey(ctx, "S1")
	component := logging.NewComponentLogger(logger, "scitran")
	logging.WithContext(ctx, component).Debug("session created", logging.String("id", "abc"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"DEBUG scitran: session created", "run_id=run-1", "subject_key=S1", "id=abc"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("expected component rendered as prefix only, got %q", line)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("import complete", logging.String("project_id", "p1"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "import complete" || entry["project_id"] != "p1" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", entry)
	}
}

func TestAutoFormatFallsBackToJSONForFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "auto.log")

	logger, err := logging.New(logging.Options{Format: "auto", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(content)), "{") {
		t.Fatalf("expected json output for file destinations, got %q", content)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 8) {
		t.Fatal("expected nop logger to be disabled")
	}
}
