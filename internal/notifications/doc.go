// Package notifications delivers watcher events via ntfy.
//
// The default implementation publishes to the configured ntfy topic and
// degrades to a no-op when no topic is set. Each event type can be toggled in
// config.toml so a busy ripping session does not flood the phone.
package notifications
