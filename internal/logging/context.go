package logging

import (
	"context"

	"github.com/alexisbeaulieu97/reactor/internal/ports"
)

// WithReactorID stores the provided reactor identifier inside the context.
func WithReactorID(ctx context.Context, id string) context.Context {
	return ports.WithReactorID(ctx, id)
}

// GetReactorID retrieves the reactor identifier from the context, returning
// an empty string when none is present.
func GetReactorID(ctx context.Context) string {
	return ports.GetReactorID(ctx)
}

// GenerateReactorID creates a new identifier suitable both for a Reactor
// value's id and for log correlation.
func GenerateReactorID() string {
	return ports.GenerateReactorID()
}
