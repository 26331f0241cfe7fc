package label

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"disclabel/internal/catalog"
	"disclabel/internal/config"
	"disclabel/internal/logging"
	"disclabel/internal/metadata"
	"disclabel/internal/services"
	"disclabel/internal/textutil"
)

// TrackSource supplies track titles for batch album labels.
type TrackSource interface {
	TrackTitles(ctx context.Context, mbid string) ([]string, error)
}

// Result describes one produced label.
type Result struct {
	Path    string
	Printed bool
	Removed bool
}

// Service renders labels into the output directory and optionally prints them.
type Service struct {
	renderer  *Renderer
	printer   Printer
	outputDir string
	print     bool
	keepFiles bool
	logger    *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithPrinter overrides the lp printer.
func WithPrinter(p Printer) Option {
	return func(s *Service) {
		if p != nil {
			s.printer = p
		}
	}
}

// WithRenderer overrides the renderer built from config fonts.
func WithRenderer(r *Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPrinting overrides cfg.Label.Print.
func WithPrinting(enabled bool) Option {
	return func(s *Service) {
		s.print = enabled
	}
}

// NewService builds a label service from configuration.
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "label", "init", "config is required", nil)
	}
	s := &Service{
		outputDir: cfg.Paths.OutputDir,
		print:     cfg.Label.Print,
		keepFiles: cfg.Label.KeepFiles,
		printer:   NewPrinter(cfg.Label.Printer),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		fonts, err := LoadFonts(cfg.Label.BoldFontPath, cfg.Label.FontPath)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "label", "load fonts", "", err)
		}
		s.renderer = NewRenderer(fonts)
	}
	s.logger = logging.NewComponentLogger(s.logger, "label")
	return s, nil
}

// Produce renders record as an album or movie label, writes it as PNG and
// spools it when printing is enabled. Printed files are removed unless
// keep_files is set.
func (s *Service) Produce(ctx context.Context, record metadata.Record) (Result, error) {
	if !record.Resolved() {
		return Result{}, services.Wrap(services.ErrValidation, "label", "produce", "record is unresolved", nil)
	}

	kind := "album"
	name := textutil.LabelFileName(".png", record.Primary, record.Secondary)
	var render func() (*image.RGBA, error)
	if record.Movie != nil {
		kind = "movie"
		name = textutil.LabelFileName(".png", record.Primary, record.Year)
		render = func() (*image.RGBA, error) { return s.renderer.RenderMovie(MovieFromRecord(record)) }
	} else {
		render = func() (*image.RGBA, error) { return s.renderer.RenderAlbum(AlbumFromRecord(record)) }
	}

	img, err := render()
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "label", "render", kind, err)
	}
	result := Result{Path: filepath.Join(s.outputDir, name)}
	if err := WritePNG(result.Path, img); err != nil {
		return Result{}, err
	}
	s.logger.Info("label written",
		logging.String(logging.FieldEventType, "label_written"),
		logging.String("label_kind", kind),
		logging.String("path", result.Path))

	if !s.print {
		return result, nil
	}
	if err := s.printer.Print(ctx, result.Path); err != nil {
		return result, err
	}
	result.Printed = true
	s.logger.Info("label printed",
		logging.String(logging.FieldEventType, "label_printed"),
		logging.String("label_kind", kind),
		logging.String("path", result.Path))

	if !s.keepFiles {
		if err := os.Remove(result.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove printed label",
				logging.String(logging.FieldEventType, "label_cleanup_failed"),
				logging.String("path", result.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the file manually or set label.keep_files"),
				logging.String(logging.FieldImpact, "printed label image left in the output directory"))
		} else {
			result.Removed = true
		}
	}
	return result, nil
}

// WriteLargeBatch renders one large album label per catalog row into outDir.
// Track titles come from tracks; a failed fetch leaves that label without a
// track list.
func (s *Service) WriteLargeBatch(ctx context.Context, rows []catalog.Row, outDir string, tracks TrackSource) ([]string, error) {
	paths := make([]string, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		album := Album{Artist: row.Artist, Album: row.Album, Year: row.Year, Genre: row.Genre, MBID: row.MBID}
		if tracks != nil && strings.TrimSpace(row.MBID) != "" {
			titles, err := tracks.TrackTitles(ctx, row.MBID)
			if err != nil {
				s.logger.Warn("track titles unavailable for label",
					logging.String(logging.FieldEventType, "label_tracks_failed"),
					logging.String("mbid", row.MBID),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check MusicBrainz connectivity"),
					logging.String(logging.FieldImpact, "label printed without a track list"))
			}
			album.Tracks = titles
		}
		img, err := s.renderer.RenderAlbum(album)
		if err != nil {
			return paths, fmt.Errorf("render row %d: %w", i+1, err)
		}
		path := filepath.Join(outDir, fmt.Sprintf("label_large_%d.png", i))
		if err := WritePNG(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteSheetBatch renders the catalog rows onto small GIF sheets in outDir.
func (s *Service) WriteSheetBatch(rows []catalog.Row, outDir string) ([]string, error) {
	entries := make([]SheetEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, SheetEntry{Artist: row.Artist, Album: row.Album, Year: row.Year, Genre: row.Genre})
	}
	sheets, err := s.renderer.RenderSheets(entries)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(sheets))
	for i, sheet := range sheets {
		path := filepath.Join(outDir, fmt.Sprintf("label_block_%d.gif", i+1))
		if err := WriteGIF(path, sheet); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
