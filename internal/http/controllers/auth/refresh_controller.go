package auth

import (
	"net/http"

	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
	"github.com/baggiolabs/baggio/internal/metrics"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// RefreshController maneja el endpoint de refresh.
type RefreshController struct {
	service *svc.Service
}

// Refresh maneja POST /api/auth/refresh
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RefreshController.Refresh"))

	var req dto.TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := c.service.Refresh(ctx, req.Token)
	if err != nil {
		log.Debug("refresh failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	metrics.TokensRevoked.Inc()
	metrics.TokensIssued.WithLabelValues("refresh").Inc()
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Token: token})
}
