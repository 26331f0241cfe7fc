// Package disc talks to physical optical drives.
//
// It enumerates drives, reads the audio table of contents through the Linux
// CDROM ioctls, derives the MusicBrainz disc id used as the disc fingerprint,
// and ejects trays once a disc has been handled. Device quirks stay here so the
// watcher and resolver only ever see a Disc value.
package disc
