package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"disclabel/internal/config"
	"disclabel/internal/logging"
	"disclabel/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")
	content := readLog(t, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if !strings.Contains(content, "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	logger = logging.NewComponentLogger(logger, "resolver")
	logger.Info("disc identified", logging.String("source", "disc-id"), logging.String("album", "Snivilisation Deluxe"))

	content := readLog(t, path)
	if !strings.Contains(content, "INFO resolver: disc identified") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "source=disc-id") {
		t.Fatalf("expected source field, got %q", content)
	}
	if !strings.Contains(content, `album="Snivilisation Deluxe"`) {
		t.Fatalf("expected quoted value, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, path := newFileLogger(t, "console", "debug")
	logger.Debug("with caller")
	if content := readLog(t, path); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logger, path := newFileLogger(t, "json", "info")
	logger.Warn("retrying", logging.Duration("delay", 2*time.Second))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace([]byte(readLog(t, path))), &entry); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry["msg"] != "retrying" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsEventFields(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	ctx := services.WithEventID(context.Background(), "evt-1")
	ctx = services.WithDrive(ctx, "/dev/sr0")
	logging.WithContext(ctx, logger).Info("polling")

	content := readLog(t, path)
	for _, want := range []string{"correlation_id=evt-1", "drive=/dev/sr0"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	logging.WarnWithContext(logger, "genre backfill failed", "genre_backfill_failed")

	content := readLog(t, path)
	for _, want := range []string{"event_type=genre_backfill_failed", "error_hint=", "impact="} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "disclabel-old.log")
	active := filepath.Join(dir, "disclabel.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, active, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
		past := time.Now().AddDate(0, 0, -30)
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "disclabel*.log",
		Exclude: []string{active},
	})
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, p := range []string{active, other} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to remain: %v", p, err)
		}
	}
	if got := logging.CleanupOldLogs(logging.NewNop(), 0, logging.RetentionTarget{Dir: dir}); got != 0 {
		t.Fatalf("expected disabled retention to remove nothing, got %d", got)
	}
}
