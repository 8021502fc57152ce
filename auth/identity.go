package auth

import (
	"context"
	"time"
)

type (
	// Identity is what a verified token says about its bearer
	Identity struct {
		Username  string
		IssuedAt  time.Time
		ExpiresAt time.Time
	}

	key byte
)

var (
	identityKey = key(1)
)

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by the access gate,
// ok is false for requests that did not go through it.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
