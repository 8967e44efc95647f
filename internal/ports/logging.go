package ports

import (
	"context"

	"github.com/google/uuid"
)

// Logger defines the engine's structured logging contract. All log calls are
// key/value pairs, must be safe for concurrent use, and automatically enrich
// entries with a reactor ID when present in context. Common fields include:
//   - reactor_id (the Reactor value's opaque handle)
//   - component (planner, resolver, pool, executor, runner)
//   - step_name / step_ref
//   - duration_ms for timed operations
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, msg string, fields ...interface{})
	Error(ctx context.Context, msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

type reactorIDKey struct{}

// WithReactorID attaches the running reactor's ID to the context so
// downstream components emit correlated logs.
func WithReactorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reactorIDKey{}, id)
}

// GetReactorID extracts a reactor ID from context. It returns an empty string
// when none has been set.
func GetReactorID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(reactorIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateReactorID produces a new identifier suitable both for log
// correlation and as a Reactor value's opaque id.
func GenerateReactorID() string {
	return uuid.NewString()
}
