package disc

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
)

// PregapSectors is the two second lead-in added to every LBA offset.
const PregapSectors = 150

// maxTracks is the fixed number of offset slots hashed into a disc id.
const maxTracks = 99

var discIDEncoding = strings.NewReplacer("+", ".", "/", "_", "=", "-")

// ComputeDiscID returns the MusicBrainz disc id for a table of contents.
// Offsets and leadOut must already include the pregap.
func ComputeDiscID(first, last, leadOut int, offsets []int) (string, error) {
	if first < 1 || last < first || last > maxTracks {
		return "", fmt.Errorf("invalid track range %d-%d", first, last)
	}
	if len(offsets) != last-first+1 {
		return "", fmt.Errorf("expected %d offsets, got %d", last-first+1, len(offsets))
	}
	if leadOut <= 0 {
		return "", fmt.Errorf("invalid lead-out %d", leadOut)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%02X%02X%08X", first, last, leadOut)
	for i := 0; i < maxTracks; i++ {
		value := 0
		if i < len(offsets) {
			value = offsets[i]
		}
		fmt.Fprintf(&b, "%08X", value)
	}
	sum := sha1.Sum([]byte(b.String()))
	return discIDEncoding.Replace(base64.StdEncoding.EncodeToString(sum[:])), nil
}

// Disc is the table of contents of an inserted audio disc.
type Disc struct {
	Device      string  `json:"device"`
	Fingerprint string  `json:"fingerprint"`
	FirstTrack  int     `json:"first_track"`
	LastTrack   int     `json:"last_track"`
	LeadOut     int     `json:"lead_out"`
	Tracks      []Track `json:"tracks"`
}

// NewDisc builds a Disc from pregap-adjusted offsets and computes its id.
func NewDisc(device string, first, leadOut int, offsets []int) (Disc, error) {
	last := first + len(offsets) - 1
	id, err := ComputeDiscID(first, last, leadOut, offsets)
	if err != nil {
		return Disc{}, err
	}
	tracks := make([]Track, len(offsets))
	for i, offset := range offsets {
		end := leadOut
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		tracks[i] = Track{Number: first + i, Offset: offset, Sectors: end - offset}
	}
	return Disc{
		Device:      device,
		Fingerprint: id,
		FirstTrack:  first,
		LastTrack:   last,
		LeadOut:     leadOut,
		Tracks:      tracks,
	}, nil
}

// SubmissionURL links to the MusicBrainz disc id lookup page.
func (d Disc) SubmissionURL() string {
	offsets := make([]string, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		offsets = append(offsets, fmt.Sprint(t.Offset))
	}
	return fmt.Sprintf("https://musicbrainz.org/cdtoc/attach?id=%s&tracks=%d&toc=%d+%d+%d+%s",
		d.Fingerprint, len(d.Tracks), d.FirstTrack, d.LastTrack, d.LeadOut, strings.Join(offsets, "+"))
}
