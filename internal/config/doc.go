// Package config loads, normalizes, and validates disclabel configuration data.
//
// It supplies XDG-based defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and DISCOGS_TOKEN. The Config type centralizes every knob the
// watcher, the movie flow, and the CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
