// Package discidcache keeps a local map from MusicBrainz disc fingerprints to
// resolved metadata records.
//
// A cached fingerprint lets the watcher skip every network lookup when a disc
// is inserted again. The cache is a human-readable JSON file (default:
// ~/.cache/disclabel/discid_cache.json) and is disabled unless enabled in
// config.toml:
//
//	[cache]
//	enabled = true
//
// CLI commands for inspection and management:
//
//	disclabel cache list              # List cached fingerprints, newest first
//	disclabel cache remove <number>   # Remove entry by number from list
//	disclabel cache clear             # Remove all entries
package discidcache
