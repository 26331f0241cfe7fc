package label

import (
	"fmt"
	"image"
	"strings"

	"disclabel/internal/metadata"
)

const (
	albumHeaderY    = MarginTop
	albumSubheaderY = MarginTop + 60
	albumTracksY    = MarginTop + 130
)

// Album is the content of a large album label.
type Album struct {
	Artist string
	Album  string
	Year   string
	Genre  string
	MBID   string
	Tracks []string
}

// AlbumFromRecord maps a resolved record onto album label content.
func AlbumFromRecord(record metadata.Record) Album {
	return Album{
		Artist: record.Primary,
		Album:  record.Secondary,
		Year:   record.Year,
		Genre:  record.Genre,
		MBID:   record.ExternalID,
		Tracks: append([]string(nil), record.Tracks...),
	}
}

// RenderAlbum draws a large album label.
func (r *Renderer) RenderAlbum(a Album) (*image.RGBA, error) {
	title, err := r.fonts.face(true, titleSize)
	if err != nil {
		return nil, err
	}
	body, err := r.fonts.face(false, trackSize)
	if err != nil {
		return nil, err
	}

	img := newCanvas(CanvasWidth, CanvasHeight)
	drawText(img, title, MarginLeft, albumHeaderY, a.Artist)
	drawText(img, body, MarginLeft, albumSubheaderY, a.Album)

	col := rightColumn(CanvasWidth-MarginRight, columnItem{title, a.Year}, columnItem{body, a.Genre})
	drawText(img, title, col, albumHeaderY, a.Year)
	drawText(img, body, col, albumSubheaderY, a.Genre)

	for _, line := range albumTrackLines(a.Tracks, func(text string, width int) []string {
		return wrapText(body, text, width)
	}) {
		drawText(img, body, MarginLeft, line.y, line.text)
	}

	if mbid := strings.TrimSpace(a.MBID); mbid != "" {
		if err := pasteQR(img, musicBrainzReleaseURL+mbid); err != nil {
			return nil, fmt.Errorf("album qr: %w", err)
		}
	}
	return img, nil
}

type placedLine struct {
	y    int
	text string
}

// albumTrackLines lays out numbered track titles below the header. Lines at or
// past the QR cutoff wrap to the narrow width; overflow ends with an ellipsis.
func albumTrackLines(tracks []string, wrap func(string, int) []string) []placedLine {
	maxY := CanvasHeight - MarginBottom
	var placed []placedLine
	y := albumTracksY
	for idx, title := range tracks {
		width := fullWidth()
		if y >= qrCutoff() {
			width = narrowWidth()
		}
		for _, line := range wrap(fmt.Sprintf("%d. %s", idx+1, title), width) {
			if y+LineSpacing > maxY {
				return append(placed, placedLine{y: y, text: ellipsis})
			}
			placed = append(placed, placedLine{y: y, text: line})
			y += LineSpacing
		}
	}
	return placed
}
