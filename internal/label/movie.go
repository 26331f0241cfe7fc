package label

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"disclabel/internal/metadata"
)

const (
	movieHeaderY   = MarginTop
	movieMetaY     = MarginTop + 70
	movieScoreY    = movieMetaY + 70
	movieSynopsisY = movieScoreY + 85

	genreTextLimit = 50
	columnGap      = "    "
)

// Movie is the content of a large movie label.
type Movie struct {
	Title         string
	Year          string
	RuntimeMin    int
	Certification string
	VoteAverage   float64
	Budget        int64
	Genres        []string
	Overview      string
	Cast          []string
	TMDBID        string
}

// MovieFromRecord maps a resolved movie record onto label content.
func MovieFromRecord(record metadata.Record) Movie {
	m := Movie{Title: record.Primary, Year: record.Year, TMDBID: record.ExternalID}
	if d := record.Movie; d != nil {
		m.RuntimeMin = d.RuntimeMin
		m.Certification = d.Certification
		m.VoteAverage = d.VoteAverage
		m.Budget = d.Budget
		m.Genres = append([]string(nil), d.Genres...)
		m.Overview = d.Overview
		m.Cast = append([]string(nil), d.Cast...)
		if m.Year == "" {
			m.Year = metadata.YearFromDate(d.ReleaseDate)
		}
	}
	return m
}

// MetaLine is the "Rating: X    Genre, Genre" line under the title.
func (m Movie) MetaLine() string {
	var parts []string
	if rating := strings.TrimSpace(m.Certification); rating != "" {
		parts = append(parts, "Rating: "+rating)
	}
	if genres := m.genreText(); genres != "" {
		parts = append(parts, genres)
	}
	return strings.Join(parts, columnGap)
}

// ScoreLine is the "TMDB Score: NN%    Budget: $N" line.
func (m Movie) ScoreLine() string {
	var parts []string
	if m.VoteAverage > 0 {
		parts = append(parts, fmt.Sprintf("TMDB Score: %d%%", int(math.Round(m.VoteAverage*10))))
	}
	if m.Budget > 0 {
		parts = append(parts, "Budget: $"+humanize.Comma(m.Budget))
	}
	return strings.Join(parts, columnGap)
}

// Runtime renders "<n> min" or empty when unknown.
func (m Movie) Runtime() string {
	if m.RuntimeMin <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min", m.RuntimeMin)
}

func (m Movie) genreText() string {
	var names []string
	for _, g := range m.Genres {
		if g = strings.TrimSpace(g); g != "" {
			names = append(names, g)
		}
	}
	text := strings.Join(names, ", ")
	if len(text) > genreTextLimit {
		text = strings.TrimRight(text[:genreTextLimit], ", ")
	}
	return text
}

func (m Movie) castLine() string {
	if len(m.Cast) == 0 {
		return ""
	}
	return "Cast: " + strings.Join(m.Cast, ", ")
}

// RenderMovie draws a large movie label.
func (r *Renderer) RenderMovie(m Movie) (*image.RGBA, error) {
	title, err := r.fonts.face(true, movieTitleSize)
	if err != nil {
		return nil, err
	}
	meta, err := r.fonts.face(false, movieMetaSize)
	if err != nil {
		return nil, err
	}
	body, err := r.fonts.face(false, movieBodySize)
	if err != nil {
		return nil, err
	}

	img := newCanvas(CanvasWidth, CanvasHeight)
	drawText(img, title, MarginLeft, movieHeaderY, m.Title)
	drawText(img, meta, MarginLeft, movieMetaY, m.MetaLine())

	runtime := m.Runtime()
	col := rightColumn(CanvasWidth-MarginRight, columnItem{title, m.Year}, columnItem{meta, runtime})
	drawText(img, title, col, movieHeaderY, m.Year)
	drawText(img, meta, col, movieMetaY, runtime)

	drawText(img, meta, MarginLeft, movieScoreY, m.ScoreLine())

	lines := wrapText(body, m.Overview, narrowWidth())
	if cast := m.castLine(); cast != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, wrapText(body, cast, narrowWidth())...)
	}
	y := movieSynopsisY
	for _, line := range limitLines(lines, (CanvasHeight-MarginBottom-movieSynopsisY)/LineSpacing) {
		drawText(img, body, MarginLeft, y, line)
		y += LineSpacing
	}

	if id := strings.TrimSpace(m.TMDBID); id != "" {
		if err := pasteQR(img, tmdbMovieURL+id); err != nil {
			return nil, fmt.Errorf("movie qr: %w", err)
		}
	}
	return img, nil
}

// limitLines keeps at most limit lines, replacing the last kept line with an
// ellipsis when anything was cut.
func limitLines(lines []string, limit int) []string {
	if limit < 1 {
		limit = 1
	}
	if len(lines) <= limit {
		return lines
	}
	out := append([]string(nil), lines[:limit-1]...)
	return append(out, ellipsis)
}
