package disc

import (
	"fmt"
	"time"
)

// SectorsPerSecond is the Red Book audio frame rate.
const SectorsPerSecond = 75

// Track is one audio track from the disc table of contents.
type Track struct {
	Number  int `json:"number"`
	Offset  int `json:"offset"`
	Sectors int `json:"sectors"`
}

// Seconds returns the whole-second length of the track.
func (t Track) Seconds() int {
	if t.Sectors <= 0 {
		return 0
	}
	return t.Sectors / SectorsPerSecond
}

// Duration returns the track length as a time.Duration.
func (t Track) Duration() time.Duration {
	return time.Duration(t.Seconds()) * time.Second
}

// FormatDuration renders a track length as mm:ss.
func FormatDuration(t Track) string {
	seconds := t.Seconds()
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// TotalSeconds sums the whole-second lengths of tracks.
func TotalSeconds(tracks []Track) int {
	total := 0
	for _, t := range tracks {
		total += t.Seconds()
	}
	return total
}
