// Package musicbrainz is the disc metadata adapter. It looks releases up by
// MusicBrainz disc id or release MBID, searches by artist and album text, and
// fetches track titles. Raw payloads are normalized into Release values whose
// missing fields are empty strings rather than errors.
//
// Requests are spaced by the configured rate limit (MusicBrainz asks for at
// most one request per second) and every call runs through the shared retry
// runner, so a 404 returns immediately while network faults back off.
package musicbrainz
