package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	stageKey      contextKey = "stage"
	subjectKeyKey contextKey = "subject_key"
)

// WithRunID annotates context with the import run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the import stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSubjectKey annotates context with the subject currently being uploaded.
func WithSubjectKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, subjectKeyKey, key)
}

// SubjectKeyFromContext returns the subject key if present.
func SubjectKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(subjectKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
