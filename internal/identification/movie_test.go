package identification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"disclabel/internal/identification/tmdb"
	"disclabel/internal/metadata"
	"disclabel/internal/services"
)

func heatResults() *tmdb.Response {
	return &tmdb.Response{Results: []tmdb.Movie{
		{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"},
		{ID: 11, Title: "Heat", ReleaseDate: ""},
		{ID: 12, Title: "The Heat", ReleaseDate: "2013-06-28"},
	}}
}

func heatDetails() map[int64]*tmdb.Details {
	return map[int64]*tmdb.Details{
		949: {
			ID:          949,
			Title:       "Heat",
			ReleaseDate: "1995-12-15",
			Runtime:     170,
			VoteAverage: 7.9,
			Budget:      60000000,
			Genres:      []tmdb.Genre{{Name: "Crime"}, {Name: "Drama"}},
			Overview:    " A group of professional bank robbers. ",
		},
	}
}

func TestResolveMovieQueryNoMatches(t *testing.T) {
	console := &scriptedConsole{}
	resolver := NewResolver(nil, nil, WithMovieSource(&fakeMovies{}), WithConsole(console))

	record, err := resolver.ResolveMovieQuery(context.Background(), "zzzz")
	if err != nil {
		t.Fatalf("ResolveMovieQuery returned error: %v", err)
	}
	if record.Resolved() {
		t.Fatalf("expected unresolved record")
	}
	if !console.printed("No matches found.") {
		t.Fatalf("expected no-match notice, got %v", console.lines)
	}
}

func TestResolveMovieQuerySingleMatchAutoSelects(t *testing.T) {
	movies := &fakeMovies{
		response: &tmdb.Response{Results: []tmdb.Movie{{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"}}},
		details:  heatDetails(),
		cert:     "R",
		cast:     []string{"Al Pacino", "Robert De Niro"},
	}
	console := &scriptedConsole{}
	resolver := NewResolver(nil, nil, WithMovieSource(movies), WithConsole(console), WithMovieOptions("gb", 3, 5))

	record, err := resolver.ResolveMovieQuery(context.Background(), " Heat ")
	if err != nil {
		t.Fatalf("ResolveMovieQuery returned error: %v", err)
	}
	if len(console.prompts) != 0 {
		t.Fatalf("single match should not prompt, got %v", console.prompts)
	}
	if record.Primary != "Heat" || record.Year != "1995" || record.ExternalID != "949" || record.Genre != "Crime" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Source != metadata.SourceTextSearchPrimary {
		t.Fatalf("source = %q", record.Source)
	}
	if record.Movie == nil || record.Movie.Certification != "R" || record.Movie.RuntimeMin != 170 || len(record.Movie.Cast) != 2 {
		t.Fatalf("unexpected movie details %+v", record.Movie)
	}
	if record.Movie.Overview != "A group of professional bank robbers." {
		t.Fatalf("overview not trimmed: %q", record.Movie.Overview)
	}
	if movies.certRegion != "GB" || movies.castLimit != 3 {
		t.Fatalf("movie options not applied: region=%q cast=%d", movies.certRegion, movies.castLimit)
	}
}

func TestResolveMovieQueryPromptsUntilValidSelection(t *testing.T) {
	movies := &fakeMovies{response: heatResults(), details: heatDetails()}
	console := &scriptedConsole{answers: []string{"7", "abc", "1"}}
	resolver := NewResolver(nil, nil, WithMovieSource(movies), WithConsole(console))

	record, err := resolver.ResolveMovieQuery(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("ResolveMovieQuery returned error: %v", err)
	}
	if record.ExternalID != "949" {
		t.Fatalf("selected %q, want 949", record.ExternalID)
	}
	if len(console.prompts) != 3 {
		t.Fatalf("expected 3 prompts, got %d", len(console.prompts))
	}
	invalid := 0
	for _, line := range console.lines {
		if line == "Invalid selection." {
			invalid++
		}
	}
	if invalid != 2 {
		t.Fatalf("expected 2 invalid selection notices, got %d", invalid)
	}
	listing := strings.Join(console.lines, "\n")
	if !strings.Contains(listing, "????") || !strings.Contains(listing, "The Heat") {
		t.Fatalf("candidate table missing entries:\n%s", listing)
	}
}

func TestResolveMovieQueryCancel(t *testing.T) {
	movies := &fakeMovies{response: heatResults()}
	console := &scriptedConsole{answers: []string{"Q"}}
	resolver := NewResolver(nil, nil, WithMovieSource(movies), WithConsole(console))

	_, err := resolver.ResolveMovieQuery(context.Background(), "Heat")
	if !errors.Is(err, services.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if movies.detailsCalls != 0 {
		t.Fatalf("no enrichment expected after cancel")
	}
}

func TestResolveMovieQueryEnrichmentFailureIsFatal(t *testing.T) {
	tests := []struct {
		name   string
		movies *fakeMovies
	}{
		{"details", &fakeMovies{detailsErr: errors.New("boom")}},
		{"certification", &fakeMovies{certErr: errors.New("boom")}},
		{"cast", &fakeMovies{castErr: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.movies.response = &tmdb.Response{Results: []tmdb.Movie{{ID: 949, Title: "Heat"}}}
			resolver := NewResolver(nil, nil, WithMovieSource(tt.movies))
			record, err := resolver.ResolveMovieQuery(context.Background(), "Heat")
			if err == nil {
				t.Fatal("expected enrichment error")
			}
			if record.Resolved() {
				t.Fatalf("expected unresolved record on failure")
			}
		})
	}
}

func TestResolveMovieQueryWithoutSource(t *testing.T) {
	resolver := NewResolver(nil, nil)
	if _, err := resolver.ResolveMovieQuery(context.Background(), "Heat"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestResolveMovieQueryResultLimit(t *testing.T) {
	movies := &fakeMovies{response: heatResults(), details: heatDetails()}
	console := &scriptedConsole{answers: []string{"3", "2"}}
	resolver := NewResolver(nil, nil, WithMovieSource(movies), WithConsole(console), WithMovieOptions("", 0, 2))

	record, err := resolver.ResolveMovieQuery(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("ResolveMovieQuery returned error: %v", err)
	}
	if record.ExternalID != "11" {
		t.Fatalf("selected %q, want 11", record.ExternalID)
	}
}
