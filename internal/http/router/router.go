// Package router arma el árbol de rutas del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminctrl "github.com/baggiolabs/baggio/internal/http/controllers/admin"
	authctrl "github.com/baggiolabs/baggio/internal/http/controllers/auth"
	healthctrl "github.com/baggiolabs/baggio/internal/http/controllers/health"
	mw "github.com/baggiolabs/baggio/internal/http/middlewares"
	"github.com/baggiolabs/baggio/internal/rate"
)

// Deps contiene todo lo que el router necesita ya construido.
type Deps struct {
	Auth      *authctrl.Controllers
	Dashboard *adminctrl.DashboardController
	Health    *healthctrl.Controller

	Verifier mw.TokenVerifier // Session Manager para RequireAuth
	Views    mw.ViewRecorder  // contador de page views
	Limiter  rate.Limiter     // límite de intentos de login; nil = sin límite
}

// New construye el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Cadena base: request id + logging estructurado + métricas.
	r.Use(mw.WithRequestID(), mw.WithLogging())

	// Salud y métricas, fuera del conteo de vistas.
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Flujos de autenticación.
	r.Route("/api/auth", func(r chi.Router) {
		if d.Limiter != nil {
			r.With(mw.RateLimit(d.Limiter)).Post("/login", d.Auth.Login.Login)
		} else {
			r.Post("/login", d.Auth.Login.Login)
		}
		r.Post("/logout", d.Auth.Logout.Logout)
		r.Post("/refresh", d.Auth.Refresh.Refresh)
		r.Post("/introspect", d.Auth.Introspect.Introspect)
		r.Post("/change-password", d.Auth.ChangePassword.ChangePassword)
		r.Get("/google/callback", d.Auth.Google.Callback)
	})

	r.Post("/api/register", d.Auth.Register.Register)

	// Magic link: cuenta como page view (el usuario navega el link del mail).
	r.With(mw.CountViews(d.Views)).Get("/magic/login/{token}", d.Auth.Magic.Login)

	// Panel admin: requiere sesión con scope admin.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(mw.RequireAuth(d.Verifier), mw.RequireScope("SCOPE_ADMIN"))
		r.Get("/dashboard", d.Dashboard.Dashboard)
	})

	return r
}
