// Package config loads, normalizes, and validates tubecron configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and ANTHROPIC_API_KEY. The Config value is passed explicitly
// to every component; nothing in the repository reads settings from globals.
//
// Provider credentials are not required at load time so read-only commands
// such as list and status work without them. The summarizer factory reports a
// missing key when a pass actually needs one.
package config
