package telegram

import "context"

type authKey struct{}

// ContextWithAuth attaches a verified AuthResult to ctx.
func ContextWithAuth(ctx context.Context, a AuthResult) context.Context {
	return context.WithValue(ctx, authKey{}, a)
}

// AuthFromContext returns the AuthResult stored by ContextWithAuth.
func AuthFromContext(ctx context.Context) (AuthResult, bool) {
	a, ok := ctx.Value(authKey{}).(AuthResult)
	return a, ok
}

