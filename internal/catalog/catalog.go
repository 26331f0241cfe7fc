package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"disclabel/internal/metadata"
)

// Header is the column order of the catalog file.
var Header = []string{"drive", "artist", "album", "year", "genre", "mbid"}

// Row is one catalog line.
type Row struct {
	Drive  string
	Artist string
	Album  string
	Year   string
	Genre  string
	MBID   string
}

// FromRecord builds a row for a resolved disc record.
func FromRecord(drive string, record metadata.Record) Row {
	return Row{
		Drive:  drive,
		Artist: record.Primary,
		Album:  record.Secondary,
		Year:   metadata.CleanYear(record.Year),
		Genre:  record.Genre,
		MBID:   record.ExternalID,
	}
}

// Record converts r back into a canonical record.
func (r Row) Record() metadata.Record {
	source := metadata.SourceTextSearchPrimary
	if strings.TrimSpace(r.MBID) != "" {
		source = metadata.SourceManualMBID
	}
	record := metadata.New(source, r.Artist, r.Album, r.Year, r.MBID)
	return record.WithGenre(r.Genre)
}

func (r Row) fields() []string {
	return []string{r.Drive, r.Artist, r.Album, r.Year, r.Genre, r.MBID}
}

// Append writes row to the catalog at path, creating the parent directory
// and header when the file does not exist yet.
func Append(path string, row Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	needsHeader := false
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		needsHeader = true
	case err != nil:
		return fmt.Errorf("stat catalog: %w", err)
	case info.Size() == 0:
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needsHeader {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write catalog header: %w", err)
		}
	}
	if err := w.Write(row.fields()); err != nil {
		return fmt.Errorf("write catalog row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush catalog: %w", err)
	}
	return nil
}

// ReadAll returns every row in the catalog. Columns are matched by header
// name so files with extra or reordered columns still load.
func ReadAll(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}
		rows = append(rows, Row{
			Drive:  get(record, "drive"),
			Artist: get(record, "artist"),
			Album:  get(record, "album"),
			Year:   metadata.CleanYear(get(record, "year")),
			Genre:  get(record, "genre"),
			MBID:   get(record, "mbid"),
		})
	}
	return rows, nil
}
