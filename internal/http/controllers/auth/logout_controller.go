package auth

import (
	"net/http"

	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
	"github.com/baggiolabs/baggio/internal/metrics"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// LogoutController maneja el endpoint de logout.
type LogoutController struct {
	service *svc.Service
}

// Logout maneja POST /api/auth/logout. Nunca falla visiblemente por token
// inválido: el service ya traga esos errores. Solo un fallo del store al
// persistir la revocación produce error.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	var req dto.TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := c.service.Logout(ctx, req.Token); err != nil {
		log.Error("logout store failure", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	metrics.TokensRevoked.Inc()
	w.WriteHeader(http.StatusNoContent)
}
