package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// ExecutionIDKey is the context key for engine execution ids.
	ExecutionIDKey contextKey = "execution_id"

	// StateIDKey is the context key for state ids.
	StateIDKey contextKey = "state_id"

	// ActorKey is the context key for actor ids.
	ActorKey contextKey = "actor"

	// CorrelationIDKey is the context key for external correlation ids.
	CorrelationIDKey contextKey = "correlation_id"
)

// WithExecutionID adds an execution id to the context.
func WithExecutionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ExecutionIDKey, id)
}

// GetExecutionID retrieves the execution id from the context.
func GetExecutionID(ctx context.Context) string {
	if id, ok := ctx.Value(ExecutionIDKey).(string); ok {
		return id
	}
	return ""
}

// WithStateID adds a state id to the context.
func WithStateID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, StateIDKey, id)
}

// GetStateID retrieves the state id from the context.
func GetStateID(ctx context.Context) string {
	if id, ok := ctx.Value(StateIDKey).(string); ok {
		return id
	}
	return ""
}

// WithActor adds an actor id to the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// GetActor retrieves the actor id from the context.
func GetActor(ctx context.Context) string {
	if actor, ok := ctx.Value(ActorKey).(string); ok {
		return actor
	}
	return ""
}

// WithCorrelationID adds a correlation id to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GetCorrelationID retrieves the correlation id from the context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the logger with the context's known fields attached.
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := GetExecutionID(ctx); id != "" {
		logger = logger.With("execution_id", id)
	}
	if id := GetStateID(ctx); id != "" {
		logger = logger.With("state_id", id)
	}
	if actor := GetActor(ctx); actor != "" {
		logger = logger.With("actor", actor)
	}
	if id := GetCorrelationID(ctx); id != "" {
		logger = logger.With("correlation_id", id)
	}
	return logger
}
