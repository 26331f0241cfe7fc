// Package services defines shared utilities consumed by the resolver, the
// metadata adapters, and the watcher.
//
// Key responsibilities:
//   - Context helpers that stamp event correlation identifiers, drive paths,
//     and flow names for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     transient faults from confirmed absences, user declines, and tooling
//     failures with errors.Is.
//
// Use these helpers when wiring new adapters so operational behaviour (error
// classification, observability, retries) stays uniform across the pipeline.
package services
