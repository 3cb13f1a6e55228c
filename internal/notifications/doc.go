// Package notifications delivers pass and note events to ntfy.
//
// The topic comes from notifications.ntfy_topic in config.toml (or
// TUBECRON_NTFY_TOPIC); without one, NewService returns a no-op. Pass summaries
// and per-note notices are toggled separately.
package notifications
