// Package logging assembles structured slog loggers and formatting helpers used
// across disclabel.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so resolver and watcher code can
// tag log lines with event correlation ids, drive paths, and flow names. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
