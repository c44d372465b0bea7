package auth

import "context"

type contextKey struct{}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   int64
	Username string
	Color    string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

func Username(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.Username
}
