// Package metadata defines the canonical identification record shared by the
// resolver, the label renderer, the CSV catalog, and the fingerprint cache,
// plus the normalization helpers every adapter uses to turn upstream payloads
// into that record.
package metadata
