package identification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"disclabel/internal/disc"
	"disclabel/internal/logging"
	"disclabel/internal/metadata"
	"disclabel/internal/services"
)

const (
	defaultSettleDelay = 2 * time.Second
	defaultRegion      = "US"
	defaultCastLimit   = 8
	defaultResultLimit = 10
)

// Resolver runs the disc and movie identification flows.
type Resolver struct {
	discs       DiscSource
	genres      GenreSource
	movies      MovieSource
	console     Console
	clipboard   Clipboard
	logger      *slog.Logger
	settleDelay time.Duration
	sleeper     func(time.Duration)
	trackTitles bool
	region      string
	castLimit   int
	resultLimit int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMovieSource enables the movie flow.
func WithMovieSource(movies MovieSource) Option {
	return func(r *Resolver) {
		r.movies = movies
	}
}

// WithConsole sets the operator prompt. Without one every prompt is declined.
func WithConsole(console Console) Option {
	return func(r *Resolver) {
		r.console = console
	}
}

// WithClipboard sets the clipboard used by the manual override prompt.
func WithClipboard(clipboard Clipboard) Option {
	return func(r *Resolver) {
		r.clipboard = clipboard
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithSettleDelay overrides the pause before the second disc id lookup.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Resolver) {
		if d >= 0 {
			r.settleDelay = d
		}
	}
}

// WithSleeper replaces the settle delay wait (tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(r *Resolver) {
		r.sleeper = sleeper
	}
}

// WithTrackTitles toggles the best-effort track title fetch for resolved
// discs that carry a release id but no titles.
func WithTrackTitles(enabled bool) Option {
	return func(r *Resolver) {
		r.trackTitles = enabled
	}
}

// WithMovieOptions sets the certification region, cast size, and number of
// candidates offered for selection.
func WithMovieOptions(region string, castLimit, resultLimit int) Option {
	return func(r *Resolver) {
		if region = strings.TrimSpace(region); region != "" {
			r.region = strings.ToUpper(region)
		}
		if castLimit > 0 {
			r.castLimit = castLimit
		}
		if resultLimit > 0 {
			r.resultLimit = resultLimit
		}
	}
}

// NewResolver constructs a Resolver. genres may be nil, which disables the
// secondary search and genre backfill.
func NewResolver(discs DiscSource, genres GenreSource, opts ...Option) *Resolver {
	r := &Resolver{
		discs:       discs,
		genres:      genres,
		settleDelay: defaultSettleDelay,
		trackTitles: true,
		region:      defaultRegion,
		castLimit:   defaultCastLimit,
		resultLimit: defaultResultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	return r
}

// ResolveDisc walks the disc fallback chain for fingerprint. The returned
// error is non-nil only when ctx is cancelled; an exhausted chain yields an
// unresolved record.
func (r *Resolver) ResolveDisc(ctx context.Context, fingerprint string, drive DriveContext) (metadata.Record, error) {
	ctx = services.WithFlow(ctx, "disc")
	ctx = services.WithDrive(ctx, drive.Device)
	fingerprint = strings.TrimSpace(fingerprint)
	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldFingerprint, fingerprint))

	if record, ok := r.lookupDisc(ctx, logger, fingerprint); ok {
		return r.finish(ctx, logger, record)
	}
	if err := ctx.Err(); err != nil {
		return metadata.Unresolved(), err
	}

	r.showTracks(drive.Tracks)
	r.ejectUnidentified(ctx, logger, drive)

	if record, ok := r.manualRelease(ctx, logger); ok {
		return r.finish(ctx, logger, record)
	}
	if err := ctx.Err(); err != nil {
		return metadata.Unresolved(), err
	}

	artist, album, ok := r.promptArtistAlbum(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			return metadata.Unresolved(), err
		}
		logger.Info("text search skipped",
			logging.String(logging.FieldEventType, "decision_summary"),
			logging.String(logging.FieldDecisionType, "text_search"),
			logging.String("decision_result", "unresolved"),
			logging.String("decision_reason", "blank_input"),
		)
		return metadata.Unresolved(), nil
	}

	if record, ok := r.searchPrimary(ctx, logger, artist, album); ok {
		return r.finish(ctx, logger, record)
	}
	if err := ctx.Err(); err != nil {
		return metadata.Unresolved(), err
	}
	if record, ok := r.searchSecondary(ctx, logger, artist, album); ok {
		return r.finish(ctx, logger, record)
	}
	if err := ctx.Err(); err != nil {
		return metadata.Unresolved(), err
	}

	logger.Info("disc unresolved",
		logging.String(logging.FieldEventType, "disc_unresolved"),
		logging.String("artist", artist),
		logging.String("album", album),
	)
	return metadata.Unresolved(), nil
}

// ResolveRelease resolves a known MusicBrainz release id directly and tags
// the record as a manual override.
func (r *Resolver) ResolveRelease(ctx context.Context, mbid string) (metadata.Record, error) {
	ctx = services.WithFlow(ctx, "release")
	logger := logging.WithContext(ctx, r.logger)
	id := ExtractID(mbid)
	if id == "" {
		return metadata.Unresolved(), services.Wrap(services.ErrValidation, "resolver", "resolve release", fmt.Sprintf("%q is not a release id", mbid), nil)
	}
	release, err := r.discs.LookupRelease(ctx, id)
	if err != nil {
		return metadata.Unresolved(), err
	}
	record := release.Record(metadata.SourceManualMBID)
	if !record.Resolved() {
		return metadata.Unresolved(), services.Wrap(services.ErrUnresolved, "resolver", "resolve release", "release has no title", nil)
	}
	return r.finish(ctx, logger, record)
}

func (r *Resolver) lookupDisc(ctx context.Context, logger *slog.Logger, fingerprint string) (metadata.Record, bool) {
	if fingerprint == "" {
		logger.Info("disc lookup skipped",
			logging.String(logging.FieldEventType, "decision_summary"),
			logging.String(logging.FieldDecisionType, "disc_lookup"),
			logging.String("decision_result", "skipped"),
			logging.String("decision_reason", "empty_fingerprint"),
		)
		return metadata.Record{}, false
	}
	for attempt := 1; attempt <= 2; attempt++ {
		record, err := r.lookupDiscOnce(ctx, fingerprint)
		if err == nil {
			logger.Info("disc identified by disc id",
				logging.String(logging.FieldEventType, "stage_resolved"),
				logging.String(logging.FieldSource, string(record.Source)),
				logging.Int("attempt", attempt),
			)
			return record, true
		}
		if ctx.Err() != nil {
			return metadata.Record{}, false
		}
		logger.Info("disc id lookup failed",
			logging.String(logging.FieldEventType, "stage_failed"),
			logging.String(logging.FieldErrorKind, services.Classify(err)),
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
		if attempt == 1 {
			if err := r.sleep(ctx, r.settleDelay); err != nil {
				return metadata.Record{}, false
			}
		}
	}
	return metadata.Record{}, false
}

func (r *Resolver) lookupDiscOnce(ctx context.Context, fingerprint string) (metadata.Record, error) {
	release, err := r.discs.LookupDiscID(ctx, fingerprint)
	if err != nil {
		return metadata.Record{}, err
	}
	record := release.Record(metadata.SourceDiscID)
	if !record.Resolved() || strings.TrimSpace(release.Title) == "" {
		return metadata.Record{}, services.Wrap(services.ErrUnresolved, "resolver", "disc lookup", "release has no title", nil)
	}
	return record, nil
}

func (r *Resolver) manualRelease(ctx context.Context, logger *slog.Logger) (metadata.Record, bool) {
	r.println("")
	r.println("Manual identification required.")
	r.println("Search on MusicBrainz by:")
	r.println("  - Artist name")
	r.println("  - Album title")
	r.println("  - Track count + durations")
	r.println("")
	r.println("Open the correct release page and copy the URL.")
	r.println("Press Enter to use the MBID from your clipboard.")
	r.println("")

	input, ok := r.readLine(ctx, "Enter MusicBrainz Release MBID URL https://musicbrainz.org/release/... (or press Enter to read it from the clipboard, or type skip): ")
	if !ok {
		return metadata.Record{}, false
	}
	candidate := ReadIDCandidate(input, r.clipboard)
	switch {
	case candidate.Origin == OriginSkipped:
		logger.Info("manual release id skipped",
			logging.String(logging.FieldEventType, "decision_summary"),
			logging.String(logging.FieldDecisionType, "manual_mbid"),
			logging.String("decision_result", "declined"),
		)
		return metadata.Record{}, false
	case !candidate.Found() && candidate.Origin == OriginInput:
		r.println("No valid MBID found in input.")
		return metadata.Record{}, false
	case !candidate.Found():
		r.println("No valid MBID found in clipboard.")
		return metadata.Record{}, false
	case candidate.Origin == OriginClipboard:
		r.println("Using MBID from clipboard: " + candidate.ID)
	}

	release, err := r.discs.LookupRelease(ctx, candidate.ID)
	if err != nil {
		if ctx.Err() == nil {
			r.println(fmt.Sprintf("Failed to fetch release for MBID %s: %v", candidate.ID, err))
			logger.Info("manual release lookup failed",
				logging.String(logging.FieldEventType, "stage_failed"),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
				logging.String("mbid", candidate.ID),
				logging.Error(err),
			)
		}
		return metadata.Record{}, false
	}
	record := release.Record(metadata.SourceManualMBID)
	if !record.Resolved() {
		return metadata.Record{}, false
	}
	logger.Info("disc identified by manual release id",
		logging.String(logging.FieldEventType, "stage_resolved"),
		logging.String(logging.FieldSource, string(record.Source)),
		logging.String("mbid", candidate.ID),
		logging.String("origin", string(candidate.Origin)),
	)
	return record, true
}

func (r *Resolver) promptArtistAlbum(ctx context.Context) (string, string, bool) {
	r.println("")
	r.println("Metadata not found. Please enter artist and album to search.")
	artist, ok := r.readLine(ctx, "Artist: ")
	if !ok || artist == "" {
		return "", "", false
	}
	album, ok := r.readLine(ctx, "Album: ")
	if !ok || album == "" {
		return "", "", false
	}
	return artist, album, true
}

func (r *Resolver) searchPrimary(ctx context.Context, logger *slog.Logger, artist, album string) (metadata.Record, bool) {
	releases, err := r.discs.SearchReleases(ctx, artist, album)
	if err != nil {
		if ctx.Err() == nil {
			logger.Info("musicbrainz text search failed",
				logging.String(logging.FieldEventType, "stage_failed"),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
				logging.Error(err),
			)
		}
		return metadata.Record{}, false
	}
	if len(releases) == 0 {
		logger.Info("musicbrainz text search returned no releases",
			logging.String(logging.FieldEventType, "stage_failed"),
			logging.String(logging.FieldErrorKind, "not_found"),
		)
		return metadata.Record{}, false
	}
	record := releases[0].Record(metadata.SourceTextSearchPrimary)
	if !record.Resolved() {
		return metadata.Record{}, false
	}
	logger.Info("disc identified by musicbrainz search",
		logging.String(logging.FieldEventType, "stage_resolved"),
		logging.String(logging.FieldSource, string(record.Source)),
		logging.Int("candidates", len(releases)),
	)
	return record, true
}

func (r *Resolver) searchSecondary(ctx context.Context, logger *slog.Logger, artist, album string) (metadata.Record, bool) {
	if r.genres == nil {
		return metadata.Record{}, false
	}
	releases, err := r.genres.Search(ctx, artist, album)
	if err != nil {
		if ctx.Err() == nil {
			logger.Info("discogs text search failed",
				logging.String(logging.FieldEventType, "stage_failed"),
				logging.String(logging.FieldErrorKind, services.Classify(err)),
				logging.Error(err),
			)
		}
		return metadata.Record{}, false
	}
	if len(releases) == 0 {
		logger.Info("discogs text search returned no releases",
			logging.String(logging.FieldEventType, "stage_failed"),
			logging.String(logging.FieldErrorKind, "not_found"),
		)
		return metadata.Record{}, false
	}
	record := releases[0].Record(metadata.SourceTextSearchSecondary)
	if !record.Resolved() {
		return metadata.Record{}, false
	}
	logger.Info("disc identified by discogs search",
		logging.String(logging.FieldEventType, "stage_resolved"),
		logging.String(logging.FieldSource, string(record.Source)),
		logging.Int("candidates", len(releases)),
	)
	return record, true
}

// finish applies the genre backfill and track title enrichment. Neither can
// change the outcome of the resolution.
func (r *Resolver) finish(ctx context.Context, logger *slog.Logger, record metadata.Record) (metadata.Record, error) {
	if !record.HasGenre() && r.genres != nil {
		releases, err := r.genres.SearchOnce(ctx, record.Primary, record.Secondary)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "genre backfill failed", "genre_backfill_failed",
				logging.String(logging.FieldErrorKind, services.Classify(err)),
				logging.String(logging.FieldImpact, "label is printed without a genre"),
				logging.String(logging.FieldErrorHint, "check the Discogs token and connectivity"),
				logging.Error(err),
			)
		case len(releases) > 0:
			record = record.WithGenre(releases[0].Genre())
		}
	}

	if r.trackTitles && len(record.Tracks) == 0 && record.ExternalID != "" {
		titles, err := r.discs.TrackTitles(ctx, record.ExternalID)
		if err != nil {
			logger.Debug("track titles unavailable",
				logging.String(logging.FieldEventType, "track_titles_failed"),
				logging.Error(err),
			)
		} else {
			record = record.WithTracks(titles)
		}
	}

	if err := ctx.Err(); err != nil {
		return metadata.Unresolved(), err
	}
	logger.Info("disc resolved",
		logging.String(logging.FieldEventType, "disc_resolved"),
		logging.String(logging.FieldSource, string(record.Source)),
		logging.String("artist", record.Primary),
		logging.String("album", record.Secondary),
		logging.String("year", record.Year),
		logging.String("genre", record.Genre),
	)
	return record, nil
}

func (r *Resolver) ejectUnidentified(ctx context.Context, logger *slog.Logger, drive DriveContext) {
	if drive.Ejector == nil || drive.Device == "" {
		return
	}
	disc.EjectAsync(ctx, drive.Ejector, drive.Device, func(err error) {
		logging.WarnWithContext(logger, "eject failed", "eject_failed",
			logging.String(logging.FieldImpact, "tray stays closed during manual identification"),
			logging.String(logging.FieldErrorHint, "eject the disc by hand"),
			logging.Error(err),
		)
	})
}

func (r *Resolver) sleep(ctx context.Context, d time.Duration) error {
	if r.sleeper != nil {
		r.sleeper(d)
		return ctx.Err()
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Resolver) println(line string) {
	if r.console != nil {
		r.console.Println(line)
	}
}

// readLine returns the trimmed answer. Read failures and a missing console
// count as a declined prompt.
func (r *Resolver) readLine(ctx context.Context, prompt string) (string, bool) {
	if r.console == nil || ctx.Err() != nil {
		return "", false
	}
	line, err := r.console.ReadLine(ctx, prompt)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			r.logger.Debug("console read failed", logging.Error(err))
		}
		return "", false
	}
	return strings.TrimSpace(line), true
}
