package identification

import (
	"context"

	"disclabel/internal/disc"
	"disclabel/internal/identification/discogs"
	"disclabel/internal/identification/musicbrainz"
	"disclabel/internal/identification/tmdb"
)

// DiscSource is the disc-metadata adapter (MusicBrainz).
type DiscSource interface {
	LookupDiscID(ctx context.Context, discID string) (*musicbrainz.Release, error)
	LookupRelease(ctx context.Context, mbid string) (*musicbrainz.Release, error)
	SearchReleases(ctx context.Context, artist, album string) ([]musicbrainz.Release, error)
	TrackTitles(ctx context.Context, mbid string) ([]string, error)
}

// GenreSource is the marketplace adapter (Discogs). SearchOnce must not retry.
type GenreSource interface {
	Search(ctx context.Context, artist, album string) ([]discogs.Release, error)
	SearchOnce(ctx context.Context, artist, album string) ([]discogs.Release, error)
}

// MovieSource is the movie-metadata adapter (TMDB).
type MovieSource = tmdb.Searcher

// Console is the operator prompt surface.
type Console interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Println(line string)
}

// Clipboard reads the system clipboard.
type Clipboard interface {
	ReadClipboard() (string, error)
}

// DriveContext describes the drive holding the disc being resolved.
type DriveContext struct {
	Device  string
	Tracks  []disc.Track
	Ejector disc.Ejector
}

var (
	_ DiscSource  = (*musicbrainz.Client)(nil)
	_ GenreSource = (*discogs.Client)(nil)
)
