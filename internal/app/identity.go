package app

import "context"

type userIDKey struct{}

// WithUserID stores the authenticated user's id in ctx. The web adapter sets
// it after token validation; backends that need the caller's identity (for
// example to grant the creator admin rights on a new company) read it back.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the caller's user id, or empty string in the
// local variant where no identity layer exists.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey{}).(string)
	return v
}
