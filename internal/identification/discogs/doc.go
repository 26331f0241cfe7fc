// Package discogs is the marketplace adapter used as the last text-search
// fallback and as the only source of genre tags. Search results are reduced
// to artist, title, year, and genres; Discogs' "Artist - Title" result
// titles and loosely typed year values are normalized here.
package discogs
