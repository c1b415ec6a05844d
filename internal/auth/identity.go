// Package auth holds the signed-in identity, its client-side session and the
// server-side token issuer.
package auth

import (
	"context"
	"errors"
	"time"
)

const RoleAdmin = "admin"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSession    = errors.New("not logged in")
)

type Identity struct {
	ID        int64     `json:"id,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsPro     bool      `json:"is_pro"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// StaticAdmin is the identity used when the deployment runs without login.
var StaticAdmin = Identity{ID: 1, Email: "admin@oee.local", Role: RoleAdmin, IsPro: true}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
