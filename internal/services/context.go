package services

import "context"

type contextKey int

const (
	videoIDKey contextKey = iota
	stageKey
	runIDKey
)

// WithVideoID tags ctx with the video being processed. Blank ids leave ctx
// unchanged.
func WithVideoID(ctx context.Context, id string) context.Context {
	return withValue(ctx, videoIDKey, id)
}

// VideoIDFromContext returns the video id set by WithVideoID.
func VideoIDFromContext(ctx context.Context) (string, bool) {
	return lookup(ctx, videoIDKey)
}

// WithStage tags ctx with a pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage set by WithStage.
func StageFromContext(ctx context.Context) (string, bool) {
	return lookup(ctx, stageKey)
}

// WithRunID tags ctx with the identifier of the current pass.
func WithRunID(ctx context.Context, id string) context.Context {
	return withValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the pass identifier set by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return lookup(ctx, runIDKey)
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func lookup(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}
