package auth

import (
	"context"
	"net/http"

	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
	"github.com/baggiolabs/baggio/internal/metrics"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// GoogleExchanger canjea el authorization code de Google por el email
// verificado del ID token. La identidad la pone Google; acá no hay password.
type GoogleExchanger interface {
	ExchangeCode(ctx context.Context, code string) (email string, err error)
}

// GoogleController maneja el callback del login federado con Google.
type GoogleController struct {
	service   *svc.Service
	exchanger GoogleExchanger
}

// Callback maneja GET /api/auth/google/callback?code=...
func (c *GoogleController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("GoogleController.Callback"))

	if c.exchanger == nil {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("login con Google deshabilitado"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("code faltante"))
		return
	}

	email, err := c.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		log.Warn("google code exchange failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
		return
	}

	token, err := c.service.AuthenticateFederated(ctx, email)
	if err != nil {
		log.Error("federated login failed", logger.Email(email), logger.Err(err))
		writeAuthError(w, err)
		return
	}

	metrics.TokensIssued.WithLabelValues("federated").Inc()
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Token: token})
}
