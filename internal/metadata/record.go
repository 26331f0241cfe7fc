package metadata

import "strings"

// Source names the resolution stage that produced a record.
type Source string

const (
	SourceDiscID              Source = "disc-id"
	SourceManualMBID          Source = "manual-mbid"
	SourceTextSearchPrimary   Source = "text-search-primary"
	SourceTextSearchSecondary Source = "text-search-secondary"
	SourceUnresolved          Source = "unresolved"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceDiscID, SourceManualMBID, SourceTextSearchPrimary, SourceTextSearchSecondary, SourceUnresolved:
		return true
	default:
		return false
	}
}

// Record is the canonical result of one resolution. Primary carries the
// artist (albums) or the title (movies); Secondary carries the album title
// and is empty for movies.
type Record struct {
	Primary    string        `json:"title_primary"`
	Secondary  string        `json:"title_secondary,omitempty"`
	Year       string        `json:"year,omitempty"`
	Genre      string        `json:"genre,omitempty"`
	ExternalID string        `json:"external_id,omitempty"`
	Tracks     []string      `json:"track_titles,omitempty"`
	Source     Source        `json:"source"`
	Movie      *MovieDetails `json:"movie,omitempty"`
}

// MovieDetails holds the enrichment fetched for a selected movie.
type MovieDetails struct {
	ReleaseDate   string   `json:"release_date,omitempty"`
	RuntimeMin    int      `json:"runtime_min,omitempty"`
	Certification string   `json:"certification,omitempty"`
	VoteAverage   float64  `json:"vote_average,omitempty"`
	Budget        int64    `json:"budget,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Overview      string   `json:"overview,omitempty"`
	Cast          []string `json:"cast,omitempty"`
}

// Unresolved returns the empty terminal record.
func Unresolved() Record {
	return Record{Source: SourceUnresolved}
}

// New builds a record tagged with source. A blank primary title always yields
// an unresolved record so the two can never disagree.
func New(source Source, primary, secondary, year, externalID string) Record {
	primary = strings.TrimSpace(primary)
	if primary == "" || source == SourceUnresolved {
		return Unresolved()
	}
	return Record{
		Primary:    primary,
		Secondary:  strings.TrimSpace(secondary),
		Year:       CleanYear(year),
		ExternalID: strings.TrimSpace(externalID),
		Source:     source,
	}
}

// Resolved reports whether the record identifies something.
func (r Record) Resolved() bool {
	return r.Source != SourceUnresolved && strings.TrimSpace(r.Primary) != ""
}

// HasGenre reports whether a genre has been supplied by any stage.
func (r Record) HasGenre() bool {
	return strings.TrimSpace(r.Genre) != ""
}

// WithGenre returns a copy of r carrying genre. An empty genre leaves r
// untouched.
func (r Record) WithGenre(genre string) Record {
	if genre = NormalizeGenre(genre); genre != "" {
		r.Genre = genre
	}
	return r
}

// WithTracks returns a copy of r carrying its own copy of titles.
func (r Record) WithTracks(titles []string) Record {
	if len(titles) == 0 {
		return r
	}
	r.Tracks = append([]string(nil), titles...)
	return r
}
