// Package logging builds the slog loggers used by tubecron.
//
// NewFromConfig tees console (or JSON) output to stderr and to the log file in
// the state directory. WithContext adds the video id, stage, and run id
// carried by a context, and Event names the pipeline event a line records.
package logging
