package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1024 * 1024

// Page is a batch of complete lines and the offset just past them.
type Page struct {
	Lines  []string
	Offset int64
}

// Filter keeps lines containing every term, compared case-insensitively.
type Filter []string

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	lower := strings.ToLower(line)
	for _, term := range f {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && !strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// Last returns up to limit trailing lines of path. A limit of zero or less
// returns every line. A missing file yields an empty page.
func Last(path string, limit int, filter Filter) (Page, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return Page{}, err
	}
	defer file.Close()

	var kept []string
	offset, err := scanLines(file, func(line string) {
		if !filter.Match(line) {
			return
		}
		kept = append(kept, line)
		if limit > 0 && len(kept) > limit {
			kept = kept[1:]
		}
	})
	if err != nil {
		return Page{}, err
	}
	return Page{Lines: kept, Offset: offset}, nil
}

// Since returns the lines written after offset.
func Since(path string, offset int64, filter Filter) (Page, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return Page{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Page{}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Page{}, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	read, err := scanLines(file, func(line string) {
		if filter.Match(line) {
			lines = append(lines, line)
		}
	})
	if err != nil {
		return Page{}, err
	}
	return Page{Lines: lines, Offset: offset + read}, nil
}

// Follow polls path every interval and hands new lines to emit until ctx
// is cancelled. Cancellation is not reported as an error.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(string)) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		page, err := Since(path, offset, filter)
		if err != nil {
			return err
		}
		for _, line := range page.Lines {
			emit(line)
		}
		offset = page.Offset

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func open(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

// scanLines feeds every newline-terminated line to fn and returns the number
// of bytes consumed. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		chunk, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(chunk))
		line := strings.TrimRight(chunk, "\r\n")
		if len(line) > maxLineBytes {
			line = line[:maxLineBytes]
		}
		fn(line)
	}
}
