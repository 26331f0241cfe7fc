// Package deps reports whether the external binaries disclabel shells out to
// (eject, lsblk, lp) are installed.
package deps
