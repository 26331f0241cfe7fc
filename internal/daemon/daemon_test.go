package daemon_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"disclabel/internal/catalog"
	"disclabel/internal/config"
	"disclabel/internal/daemon"
	"disclabel/internal/disc"
	"disclabel/internal/identification"
	"disclabel/internal/label"
	"disclabel/internal/metadata"
	"disclabel/internal/notifications"
	"disclabel/internal/testsupport"
)

type emptyReader struct{}

func (emptyReader) ReadDisc(context.Context, string) (disc.Disc, error) {
	return disc.Disc{}, os.ErrNotExist
}

type noopResolver struct{}

func (noopResolver) ResolveDisc(context.Context, string, identification.DriveContext) (metadata.Record, error) {
	return metadata.Unresolved(), nil
}

type nopSink struct{}

func (nopSink) Handle(context.Context, string, metadata.Record) error { return nil }

func testDeps() daemon.MonitorDeps {
	return daemon.MonitorDeps{
		Drives:   func(context.Context) ([]string, error) { return []string{"/dev/sr0"}, nil },
		Reader:   emptyReader{},
		Resolver: noopResolver{},
		Sink:     nopSink{},
	}
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	d, err := daemon.New(cfg, testDeps(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(d.Stop)

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("lock path = %q", status.LockFilePath)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}
	if held, err := daemon.LockHeld(cfg.LockPath()); err != nil || !held {
		t.Fatalf("LockHeld = %v, %v; want true", held, err)
	}

	second, err := daemon.New(cfg, testDeps(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected lock contention to prevent a second instance")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	if held, err := daemon.LockHeld(cfg.LockPath()); err != nil || held {
		t.Fatalf("LockHeld after stop = %v, %v; want false", held, err)
	}
}

func TestLockHeldWithoutLockFile(t *testing.T) {
	held, err := daemon.LockHeld(filepath.Join(t.TempDir(), "missing.lock"))
	if err != nil || held {
		t.Fatalf("LockHeld = %v, %v; want false, nil", held, err)
	}
}

func TestDaemonRunReturnsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	d, err := daemon.New(cfg, testDeps(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	errs := make(chan error, 1)
	go func() { errs <- d.Run(ctx) }()

	select {
	case err := <-errs:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if d.Status().Running {
		t.Fatal("expected daemon stopped after Run")
	}
}

type fakeLabels struct {
	records []metadata.Record
}

func (f *fakeLabels) Produce(_ context.Context, record metadata.Record) (label.Result, error) {
	f.records = append(f.records, record)
	return label.Result{Path: "x.png", Printed: true}, nil
}

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) Publish(context.Context, notifications.Event, notifications.Payload) error {
	n.calls++
	return errors.New("ntfy unreachable")
}

func TestLabelSinkLogsNotificationFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOutputMode(config.OutputModeLabel))
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	notifier := &failingNotifier{}

	sink, err := daemon.NewSink(cfg, &fakeLabels{}, notifier, daemon.WithSinkLogger(logger))
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	record := metadata.New(metadata.SourceDiscID, "Orbital", "Snivilisation", "1994", "abc-123")
	if err := sink.Handle(context.Background(), "/dev/sr0", record); err != nil {
		t.Fatalf("Handle should ignore notification errors: %v", err)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one label printed notification, got %d", notifier.calls)
	}
	out := buf.String()
	if !strings.Contains(out, "notification failed") || !strings.Contains(out, "ntfy unreachable") {
		t.Fatalf("expected notification failure to be logged, got %q", out)
	}
}

func TestNewSinkModes(t *testing.T) {
	record := metadata.New(metadata.SourceDiscID, "Orbital", "Snivilisation", "1994", "abc-123").WithGenre("Electronic")

	t.Run("label", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithOutputMode(config.OutputModeLabel))
		labels := &fakeLabels{}
		sink, err := daemon.NewSink(cfg, labels, nil)
		if err != nil {
			t.Fatalf("NewSink: %v", err)
		}
		if err := sink.Handle(context.Background(), "/dev/sr0", record); err != nil {
			t.Fatalf("Handle: %v", err)
		}
		if len(labels.records) != 1 {
			t.Fatal("expected label produced")
		}
		if _, err := os.Stat(cfg.Paths.CSVPath); !os.IsNotExist(err) {
			t.Fatal("label mode must not write the CSV")
		}
	})

	t.Run("both", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithOutputMode(config.OutputModeBoth))
		labels := &fakeLabels{}
		sink, err := daemon.NewSink(cfg, labels, nil)
		if err != nil {
			t.Fatalf("NewSink: %v", err)
		}
		if err := sink.Handle(context.Background(), "/dev/sr0", record); err != nil {
			t.Fatalf("Handle: %v", err)
		}
		rows, err := catalog.ReadAll(cfg.Paths.CSVPath)
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		if len(rows) != 1 || rows[0].Artist != "Orbital" || rows[0].Drive != "/dev/sr0" || rows[0].MBID != "abc-123" {
			t.Fatalf("unexpected rows %+v", rows)
		}
		if len(labels.records) != 1 {
			t.Fatal("expected label produced in both mode")
		}
	})

	t.Run("label mode needs a producer", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithOutputMode(config.OutputModeLabel))
		if _, err := daemon.NewSink(cfg, nil, nil); err == nil {
			t.Fatal("expected configuration error")
		}
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithOutputMode(config.OutputModeCSV))
		cfg.Paths.CSVPath = filepath.Join(t.TempDir(), "nested", "cds.csv")
		sink, err := daemon.NewSink(cfg, nil, nil)
		if err != nil {
			t.Fatalf("NewSink: %v", err)
		}
		if err := sink.Handle(context.Background(), "/dev/sr1", record); err != nil {
			t.Fatalf("Handle: %v", err)
		}
		lines := testsupport.ReadLines(t, cfg.Paths.CSVPath)
		if len(lines) != 2 || lines[0] != "drive,artist,album,year,genre,mbid" {
			t.Fatalf("unexpected csv %v", lines)
		}
	})
}
