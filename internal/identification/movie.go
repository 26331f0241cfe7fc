package identification

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"disclabel/internal/identification/tmdb"
	"disclabel/internal/logging"
	"disclabel/internal/metadata"
	"disclabel/internal/services"
	"disclabel/internal/textutil"
)

// ResolveMovieQuery searches for title and returns the enriched record of the
// chosen movie. No matches yield an unresolved record; cancelling the
// selection returns services.ErrDeclined. Enrichment failures are returned
// as errors so the caller can retry with another title.
func (r *Resolver) ResolveMovieQuery(ctx context.Context, title string) (metadata.Record, error) {
	ctx = services.WithFlow(ctx, "movie")
	logger := logging.WithContext(ctx, r.logger).With(logging.String("query", title))
	if r.movies == nil {
		return metadata.Unresolved(), services.Wrap(services.ErrConfiguration, "resolver", "movie query", "movie source not configured", nil)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return metadata.Unresolved(), nil
	}

	resp, err := r.movies.SearchMovie(ctx, title)
	if err != nil {
		return metadata.Unresolved(), fmt.Errorf("search %q: %w", title, err)
	}
	results := resp.Results
	if len(results) > r.resultLimit {
		results = results[:r.resultLimit]
	}

	var selected tmdb.Movie
	switch len(results) {
	case 0:
		r.println("No matches found.")
		logger.Info("movie search returned no matches",
			logging.String(logging.FieldEventType, "movie_unresolved"),
		)
		return metadata.Unresolved(), nil
	case 1:
		selected = results[0]
		logger.Info("single movie match selected",
			logging.String(logging.FieldEventType, "decision_summary"),
			logging.String(logging.FieldDecisionType, "movie_selection"),
			logging.String("decision_result", "auto_selected"),
			logging.Int64("tmdb_id", selected.ID),
		)
	default:
		choice, err := r.selectMovie(ctx, results)
		if err != nil {
			return metadata.Unresolved(), err
		}
		selected = choice
		logger.Info("movie match selected",
			logging.String(logging.FieldEventType, "decision_summary"),
			logging.String(logging.FieldDecisionType, "movie_selection"),
			logging.String("decision_result", "operator_selected"),
			logging.Int("candidates", len(results)),
			logging.Int64("tmdb_id", selected.ID),
		)
	}

	record, err := r.enrichMovie(ctx, selected)
	if err != nil {
		logging.WarnWithContext(logger, "movie enrichment failed", "movie_enrichment_failed",
			logging.String(logging.FieldErrorKind, services.Classify(err)),
			logging.String(logging.FieldImpact, "no label for this query"),
			logging.String(logging.FieldErrorHint, "retry the title or check the TMDB api key"),
			logging.Int64("tmdb_id", selected.ID),
			logging.Error(err),
		)
		return metadata.Unresolved(), err
	}
	logger.Info("movie resolved",
		logging.String(logging.FieldEventType, "movie_resolved"),
		logging.String("title", record.Primary),
		logging.String("year", record.Year),
		logging.String("certification", record.Movie.Certification),
	)
	return record, nil
}

// MovieCandidates renders ranked search results as a numbered table.
func MovieCandidates(results []tmdb.Movie) string {
	rows := make([][]string, 0, len(results))
	for i, m := range results {
		year := metadata.YearFromDate(m.ReleaseDate)
		rows = append(rows, []string{
			fmt.Sprintf("%2d", i+1),
			strings.TrimSpace(m.Title),
			textutil.Ternary(year == "", "????", year),
		})
	}
	return textutil.RenderTable([]string{"#", "Title", "Year"}, rows, []textutil.Align{textutil.AlignRight, textutil.AlignLeft, textutil.AlignLeft})
}

func (r *Resolver) selectMovie(ctx context.Context, results []tmdb.Movie) (tmdb.Movie, error) {
	for _, line := range strings.Split(MovieCandidates(results), "\n") {
		r.println(line)
	}
	for {
		answer, ok := r.readLine(ctx, "Select movie number (or 'q' to cancel): ")
		if !ok {
			if err := ctx.Err(); err != nil {
				return tmdb.Movie{}, err
			}
			return tmdb.Movie{}, services.Wrap(services.ErrDeclined, "resolver", "movie selection", "prompt unavailable", nil)
		}
		if strings.EqualFold(answer, "q") {
			return tmdb.Movie{}, services.Wrap(services.ErrDeclined, "resolver", "movie selection", "cancelled", nil)
		}
		index, err := strconv.Atoi(answer)
		if err != nil || index < 1 || index > len(results) {
			r.println("Invalid selection.")
			continue
		}
		return results[index-1], nil
	}
}

func (r *Resolver) enrichMovie(ctx context.Context, movie tmdb.Movie) (metadata.Record, error) {
	details, err := r.movies.MovieDetails(ctx, movie.ID)
	if err != nil {
		return metadata.Record{}, fmt.Errorf("movie details %d: %w", movie.ID, err)
	}
	certification, err := r.movies.Certification(ctx, movie.ID, r.region)
	if err != nil {
		return metadata.Record{}, fmt.Errorf("certification %d: %w", movie.ID, err)
	}
	cast, err := r.movies.Cast(ctx, movie.ID, r.castLimit)
	if err != nil {
		return metadata.Record{}, fmt.Errorf("cast %d: %w", movie.ID, err)
	}

	title := metadata.FirstNonEmpty(details.Title, movie.Title)
	releaseDate := metadata.FirstNonEmpty(details.ReleaseDate, movie.ReleaseDate)
	genres := details.GenreNames()
	record := metadata.New(metadata.SourceTextSearchPrimary, title, "", metadata.YearFromDate(releaseDate), strconv.FormatInt(movie.ID, 10))
	if !record.Resolved() {
		return metadata.Record{}, services.Wrap(services.ErrMalformed, "resolver", "movie details", "movie has no title", nil)
	}
	record = record.WithGenre(metadata.FirstGenre(genres))
	record.Movie = &metadata.MovieDetails{
		ReleaseDate:   releaseDate,
		RuntimeMin:    details.Runtime,
		Certification: strings.TrimSpace(certification),
		VoteAverage:   details.VoteAverage,
		Budget:        details.Budget,
		Genres:        genres,
		Overview:      strings.TrimSpace(details.Overview),
		Cast:          cast,
	}
	return record, nil
}
