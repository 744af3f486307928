package auth

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const adminKey ctxKey = iota // stores Identity

// Method names the credential that authenticated a request.
type Method string

const (
	MethodSession Method = "session"
	MethodSecret  Method = "shared_secret"
)

// Identity is the authenticated administrator of a request.
type Identity struct {
	Username string
	Method   Method
}

// WithAdmin adds the authenticated identity to the context.
func WithAdmin(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, adminKey, id)
}

// AdminFromContext returns the authenticated identity, if any.
func AdminFromContext(ctx context.Context) (Identity, bool) {
	if v := ctx.Value(adminKey); v != nil {
		if id, ok := v.(Identity); ok {
			return id, true
		}
	}
	return Identity{}, false
}
