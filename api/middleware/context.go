package middleware

import (
	"context"

	"github.com/floramayor/floramayor-backend/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const ctxCaller contextKey = "caller"

// Caller is the already-authenticated identity forwarded by the auth proxy.
type Caller struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// WithCaller injects the caller identity into the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCaller, caller)
}

// CallerFromContext returns the caller identity, if one was attached.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	caller, ok := ctx.Value(ctxCaller).(Caller)
	return caller, ok
}
