// Package identification turns a disc fingerprint or a typed movie title into
// a canonical metadata record.
//
// The Resolver walks a strict fallback chain for discs: disc id lookup (retried
// once after a settle delay), a manual MusicBrainz release id, an artist and
// album search on MusicBrainz, then a Discogs search. Whatever stage resolves
// the disc, a single best-effort Discogs call backfills a missing genre. The
// movie flow searches TMDB, lets the operator pick among ranked matches, and
// enriches the pick with details, certification, and cast.
//
// Prompts go through the Console interface so the watcher, the CLI, and tests
// share one implementation of the chain. Callers own every side effect beyond
// ejecting an unidentified disc: printing, CSV rows, and duplicate tracking.
package identification
