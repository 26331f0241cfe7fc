// Package main hosts the disclabel CLI entrypoint and command graph.
//
// The Cobra-based command tree wires the configuration, credentials, metadata
// adapters, resolver, label service, and watcher together. Subcommands stay
// thin: identification lives in internal/identification, rendering in
// internal/label, and the polling loop in internal/daemon.
package main
