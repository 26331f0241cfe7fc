package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"disclabel/internal/metadata"
)

func TestAppendCreatesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "discs.csv")
	record := metadata.New(metadata.SourceDiscID, "Orbital", "Snivilisation", "1994", "abc-123").WithGenre("Electronic")

	if err := Append(path, FromRecord("/dev/sr0", record)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := Append(path, Row{Drive: "/dev/sr1", Artist: "Björk", Album: "Post, Remixed", Year: "1995.0"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), data)
	}
	if lines[0] != "drive,artist,album,year,genre,mbid" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "/dev/sr0,Orbital,Snivilisation,1994,Electronic,abc-123" {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if !strings.Contains(lines[2], `"Post, Remixed"`) {
		t.Fatalf("expected quoted album, got %q", lines[2])
	}
}

func TestReadAllMatchesColumnsByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discs.csv")
	content := "artist,album,mbid,year,genre\nOrbital,Snivilisation,abc-123,1994.0,Electronic\nAphex Twin,Selected Ambient Works,,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Year != "1994" || rows[0].MBID != "abc-123" || rows[0].Drive != "" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	rec := rows[0].Record()
	if rec.Source != metadata.SourceManualMBID || rec.Genre != "Electronic" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rows[1].Record().Source != metadata.SourceTextSearchPrimary {
		t.Fatalf("row without mbid should map to a text search record")
	}
}

func TestReadAllEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discs.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := ReadAll(path)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no rows, got %v %v", rows, err)
	}
}
