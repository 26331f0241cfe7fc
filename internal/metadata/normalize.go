package metadata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var genreCaser = cases.Title(language.English)

// YearFromDate returns the first four characters of a date string such as
// "1994-10-10". Shorter values are returned whole; blank input yields "".
func YearFromDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}
	if utf8.RuneCountInString(date) <= 4 {
		return date
	}
	return string([]rune(date)[:4])
}

// CleanYear coerces a year to an integer-valued string: "1994.0" becomes
// "1994". Values that do not parse as a finite number, or are too large to
// be a year, yield "".
func CleanYear(year string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		return ""
	}
	value, err := strconv.ParseFloat(year, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) >= 1e18 {
		return ""
	}
	return strconv.FormatInt(int64(value), 10)
}

// CleanYearValue accepts the loosely typed year values found in JSON payloads
// (numbers, numeric strings, json.Number) and normalizes them like CleanYear.
func CleanYearValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return CleanYear(v)
	case json.Number:
		return CleanYear(v.String())
	case float64:
		return CleanYear(strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		return CleanYear(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// FirstGenre returns the normalized first entry of a genre list.
func FirstGenre(genres []string) string {
	if len(genres) == 0 {
		return ""
	}
	return NormalizeGenre(genres[0])
}

// NormalizeGenre trims a genre tag and title-cases tags that arrive fully
// lower-cased ("electronic"). Mixed-case tags such as "R&B" are preserved.
func NormalizeGenre(genre string) string {
	genre = strings.Join(strings.Fields(genre), " ")
	if genre == "" {
		return ""
	}
	if genre == strings.ToLower(genre) {
		return genreCaser.String(genre)
	}
	return genre
}
