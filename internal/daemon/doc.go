// Package daemon runs the long-lived disc watcher.
//
// A single poll loop walks the optical drives once per tick, compares each
// drive's disc fingerprint with the last one it handled, and on a change
// waits for the drive to settle, resolves the disc, hands the record to the
// configured sink (label, CSV, or both), and ejects it. Errors and panics in
// a tick are logged and followed by a short back-off; they never stop the
// loop. Optional udev netlink events wake the loop early.
//
// The daemon holds a flock on <state_dir>/disclabel.lock so only one watcher
// runs per machine.
package daemon
