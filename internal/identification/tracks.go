package identification

import (
	"fmt"
	"strings"

	"disclabel/internal/disc"
	"disclabel/internal/textutil"
)

// TrackListing renders the disc's track lengths for manual lookup.
func TrackListing(tracks []disc.Track) string {
	rows := make([][]string, 0, len(tracks)+1)
	for i, t := range tracks {
		number := t.Number
		if number == 0 {
			number = i + 1
		}
		rows = append(rows, []string{fmt.Sprintf("%2d", number), disc.FormatDuration(t)})
	}
	total := disc.TotalSeconds(tracks)
	rows = append(rows, []string{"", fmt.Sprintf("%02d:%02d", total/60, total%60)})
	return textutil.RenderTable([]string{"#", "Length"}, rows, []textutil.Align{textutil.AlignRight, textutil.AlignRight})
}

func (r *Resolver) showTracks(tracks []disc.Track) {
	if r.console == nil || len(tracks) == 0 {
		return
	}
	r.println("")
	r.println("Track list (for identification):")
	for _, line := range strings.Split(TrackListing(tracks), "\n") {
		r.println(line)
	}
	r.println("Use this + artist/album to search on https://musicbrainz.org")
}
