package auth

import (
	"context"

	"github.com/dukerupert/roomshare/internal/apperr"
)

type contextKey struct{}

// AuthContext identifies the signed-in caller of a request. House scoping is
// not cached here; services read the caller's profile for it.
type AuthContext struct {
	UserID    string
	SessionID int64
	Token     string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// WithUser is shorthand for WithAuth with only a user id, as used by
// background callers and tests.
func WithUser(ctx context.Context, userID string) context.Context {
	return WithAuth(ctx, AuthContext{UserID: userID})
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func UserID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.UserID
}

// Caller returns the signed-in user id or apperr.ErrNotAuthenticated.
func Caller(ctx context.Context) (string, error) {
	id := UserID(ctx)
	if id == "" {
		return "", apperr.ErrNotAuthenticated
	}
	return id, nil
}
