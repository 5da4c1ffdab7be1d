package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type invocationContextKey struct{}

// NewInvocationID returns a fresh id correlating the dispatcher's log lines
// with the child it launches.
func NewInvocationID() string {
	return uuid.NewString()
}

func WithInvocationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, invocationContextKey{}, id)
}

func InvocationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(invocationContextKey{}).(string)
	return id, ok && id != ""
}
