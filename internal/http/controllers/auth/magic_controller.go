package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
	"github.com/baggiolabs/baggio/internal/metrics"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// MagicController maneja el login por magic link.
type MagicController struct {
	service *svc.Service
}

// Login maneja GET /magic/login/{token}. Variante JSON: responde
// {success, token} con un token de sesión fresco (no redirect; el front
// consume la respuesta). La activación del principal es un latch one-way
// dentro del service.
func (c *MagicController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MagicController.Login"))

	raw := chi.URLParam(r, "token")
	if raw == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("token faltante"))
		return
	}

	token, err := c.service.MagicLogin(ctx, raw)
	if err != nil {
		log.Debug("magic login failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	metrics.TokensIssued.WithLabelValues("magic").Inc()
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Token: token})
}
