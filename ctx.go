package users

import (
	"context"

	"github.com/goliatone/go-router"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterClaims extracts the AuthClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// CallerFromContext derives the policy caller from whatever claims the token
// middleware stored. An absent or non-decodable claim set yields the
// anonymous caller rather than an error.
func CallerFromContext(ctx context.Context) Caller {
	claims, ok := GetClaims(ctx)
	if !ok {
		return AnonymousCaller()
	}
	return CallerFromClaims(claims)
}

// CallerFromRouterContext derives the policy caller from the router context.
func CallerFromRouterContext(ctx router.Context, key string) Caller {
	claims, ok := GetRouterClaims(ctx, key)
	if !ok {
		return AnonymousCaller()
	}
	return CallerFromClaims(claims)
}
