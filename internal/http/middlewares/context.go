package middlewares

import (
	"context"

	jwtx "github.com/baggiolabs/baggio/internal/jwt"
)

type ctxKeyRequestID struct{}
type ctxKeyClaims struct{}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, rid)
}

// GetRequestID extrae el request ID del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

// WithClaims inyecta las claims verificadas del token en el contexto.
func WithClaims(ctx context.Context, c *jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims{}, c)
}

// GetClaims extrae las claims del contexto (nil si el request no pasó por
// RequireAuth).
func GetClaims(ctx context.Context) *jwtx.Claims {
	if v, ok := ctx.Value(ctxKeyClaims{}).(*jwtx.Claims); ok {
		return v
	}
	return nil
}
