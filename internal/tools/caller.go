package tools

import "context"

type callerKey struct{}

// WithCaller records the authenticated user acting on a capability call.
func WithCaller(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerOr returns the recorded caller, or fallback when none was recorded.
func CallerOr(ctx context.Context, fallback string) string {
	if v, ok := ctx.Value(callerKey{}).(string); ok && v != "" {
		return v
	}
	return fallback
}
