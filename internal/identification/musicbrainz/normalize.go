package musicbrainz

import (
	"strings"

	"disclabel/internal/metadata"
)

// extractArtist tries the nested artist name of the first credit, then the
// credited name, then the display phrase.
func extractArtist(credits []artistCredit, phrase string) string {
	if len(credits) == 0 {
		return strings.TrimSpace(phrase)
	}
	first := credits[0]
	return metadata.FirstNonEmpty(first.Artist.Name, first.Name, phrase)
}

func extractTracks(media []medium) []string {
	var titles []string
	for _, m := range media {
		for _, t := range m.Tracks {
			titles = append(titles, metadata.FirstNonEmpty(t.Recording.Title, t.Title))
		}
	}
	return titles
}

func convertRelease(raw rawRelease) Release {
	return Release{
		ID:     strings.TrimSpace(raw.ID),
		Title:  strings.TrimSpace(raw.Title),
		Artist: extractArtist(raw.ArtistCredit, raw.ArtistCreditPhrase),
		Date:   strings.TrimSpace(raw.Date),
		Tracks: extractTracks(raw.Media),
	}
}

// Record converts r into a canonical record tagged with source. The year is
// the cleaned first four characters of the release date.
func (r Release) Record(source metadata.Source) metadata.Record {
	year := metadata.CleanYear(metadata.YearFromDate(r.Date))
	return metadata.New(source, r.Artist, r.Title, year, r.ID).WithTracks(r.Tracks)
}

// searchQuery builds the Lucene query used for artist and album searches.
func searchQuery(artist, album string) string {
	escape := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `artist:"` + escape.Replace(strings.TrimSpace(artist)) + `" AND release:"` + escape.Replace(strings.TrimSpace(album)) + `"`
}
