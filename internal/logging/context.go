package logging

import (
	"context"
	"log/slog"

	"tubecron/internal/services"
)

// Structured field keys shared by every tubecron log line.
const (
	FieldComponent = "component"
	FieldVideoID   = "video_id"
	FieldStage     = "stage"
	FieldRunID     = "run_id"
	// FieldEventType names the pipeline event (video_discovered, item_failed, pass_completed).
	FieldEventType = "event_type"
)

// ContextFields returns the video, stage, and run attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr
	if id, ok := services.VideoIDFromContext(ctx); ok {
		fields = append(fields, VideoID(id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	return fields
}

// WithContext returns logger tagged with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
