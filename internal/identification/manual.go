package identification

import (
	"regexp"
	"strings"
)

var releaseIDPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// ExtractID returns the first release id embedded in text, or "".
func ExtractID(text string) string {
	return releaseIDPattern.FindString(text)
}

// Origin records where a manual id candidate came from.
type Origin string

const (
	OriginInput     Origin = "input"
	OriginClipboard Origin = "clipboard"
	OriginSkipped   Origin = "skipped"
)

// Candidate is the outcome of the manual override prompt. ID is empty when
// no usable id was found.
type Candidate struct {
	ID     string
	Origin Origin
}

// Found reports whether a release id was obtained.
func (c Candidate) Found() bool {
	return c.ID != ""
}

// ReadIDCandidate applies the manual override precedence. Non-empty input
// decides on its own; only empty input reads the clipboard, and "skip"
// returns without touching it.
func ReadIDCandidate(explicit string, clipboard Clipboard) Candidate {
	explicit = strings.TrimSpace(explicit)
	if strings.EqualFold(explicit, "skip") {
		return Candidate{Origin: OriginSkipped}
	}
	if explicit != "" {
		return Candidate{ID: ExtractID(explicit), Origin: OriginInput}
	}
	if clipboard == nil {
		return Candidate{Origin: OriginClipboard}
	}
	text, err := clipboard.ReadClipboard()
	if err != nil {
		return Candidate{Origin: OriginClipboard}
	}
	return Candidate{ID: ExtractID(text), Origin: OriginClipboard}
}
