package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"disclabel/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disclabel.log")
	writeLog(t, path, "a\nb\nc\n")

	page, err := logs.Last(path, 2, nil)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if len(page.Lines) != 2 || page.Lines[0] != "b" || page.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", page.Lines)
	}
	if page.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", page.Offset)
	}

	all, err := logs.Last(path, 0, nil)
	if err != nil {
		t.Fatalf("last all: %v", err)
	}
	if len(all.Lines) != 3 {
		t.Fatalf("expected every line, got %#v", all.Lines)
	}
}

func TestLastMissingFile(t *testing.T) {
	page, err := logs.Last(filepath.Join(t.TempDir(), "missing.log"), 10, nil)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if len(page.Lines) != 0 || page.Offset != 0 {
		t.Fatalf("expected empty page, got %#v", page)
	}
}

func TestLastRejectsDirectory(t *testing.T) {
	if _, err := logs.Last(t.TempDir(), 10, nil); err == nil {
		t.Fatal("expected directory to be rejected")
	}
}

func TestFilterMatchesAllTerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disclabel.log")
	writeLog(t, path, "INFO label written\nWARN discogs disabled\nINFO disc identified\n")

	page, err := logs.Last(path, 10, logs.Filter{"info", "DISC"})
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if len(page.Lines) != 1 || page.Lines[0] != "INFO disc identified" {
		t.Fatalf("unexpected filtered lines: %#v", page.Lines)
	}
}

func TestSinceLeavesPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disclabel.log")
	writeLog(t, path, "one\n")

	page, err := logs.Last(path, 10, nil)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	appendLog(t, path, "two\nthr")

	next, err := logs.Since(path, page.Offset, nil)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != "two" {
		t.Fatalf("unexpected lines: %#v", next.Lines)
	}

	appendLog(t, path, "ee\n")
	rest, err := logs.Since(path, next.Offset, nil)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(rest.Lines) != 1 || rest.Lines[0] != "three" {
		t.Fatalf("expected completed line, got %#v", rest.Lines)
	}
}

func TestSinceRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disclabel.log")
	writeLog(t, path, "first line\nsecond line\n")

	page, err := logs.Last(path, 10, nil)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	writeLog(t, path, "new\n")

	next, err := logs.Since(path, page.Offset, nil)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != "new" {
		t.Fatalf("expected restart from beginning, got %#v", next.Lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disclabel.log")
	writeLog(t, path, "start\n")
	page, err := logs.Last(path, 1, nil)
	if err != nil {
		t.Fatalf("last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var mu sync.Mutex
	var got []string
	seen := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, page.Offset, 10*time.Millisecond, nil, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
			select {
			case seen <- struct{}{}:
			default:
			}
		})
	}()

	appendLog(t, path, "later\n")

	select {
	case <-seen:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit appended line")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("follow returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}
