package services

import "context"

type contextKey string

const (
	taskIDKey    contextKey = "task_id"
	senderKey    contextKey = "sender"
	stageKey     contextKey = "stage"
	batchKey     contextKey = "batch"
	requestIDKey contextKey = "request_id"
)

// WithTaskID annotates context with the analysis task identifier.
func WithTaskID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, taskIDKey, id)
}

// TaskIDFromContext extracts the task identifier if present.
func TaskIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taskIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSender annotates context with the sender identifier being analyzed.
func WithSender(ctx context.Context, sender string) context.Context {
	if sender == "" {
		return ctx
	}
	return context.WithValue(ctx, senderKey, sender)
}

// SenderFromContext returns the sender identifier if present.
func SenderFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(senderKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithBatch annotates context with the 1-based batch ordinal.
func WithBatch(ctx context.Context, batch int) context.Context {
	if batch <= 0 {
		return ctx
	}
	return context.WithValue(ctx, batchKey, batch)
}

// BatchFromContext extracts the batch ordinal if present.
func BatchFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(batchKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
