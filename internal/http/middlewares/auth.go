package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/baggiolabs/baggio/internal/http/errors"
	jwtx "github.com/baggiolabs/baggio/internal/jwt"
)

// TokenVerifier es lo que el middleware necesita del Session Manager:
// verificación completa (firma + expiración access + revocación).
type TokenVerifier interface {
	Verify(ctx context.Context, raw string, isRefresh bool) (*jwtx.Claims, error)
}

// RequireAuth valida Authorization: Bearer <JWT> (modo access, consultando
// revocación en cada request) y guarda las claims en el contexto.
// Token ausente o inválido responde 401.
func RequireAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrUnauthenticated)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := verifier.Verify(r.Context(), raw, false)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthenticated)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireScope exige que las claims del contexto tengan el scope dado.
// Debe encadenarse después de RequireAuth.
func RequireScope(scope string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				errors.WriteError(w, errors.ErrUnauthenticated)
				return
			}
			if claims.Scope != scope {
				errors.WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
