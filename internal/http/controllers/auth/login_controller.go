package auth

import (
	"net/http"

	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
	"github.com/baggiolabs/baggio/internal/metrics"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// LoginController maneja el endpoint de login.
type LoginController struct {
	service *svc.Service
}

// Login maneja POST /api/auth/login
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email y password son obligatorios"))
		return
	}

	token, err := c.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		metrics.Logins.WithLabelValues(loginResult(err)).Inc()
		writeAuthError(w, err)
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	metrics.TokensIssued.WithLabelValues("login").Inc()
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Token: token})
}

func loginResult(err error) string {
	switch err {
	case svc.ErrUnauthenticated, svc.ErrUserNotFound:
		return "unauthenticated"
	default:
		return "error"
	}
}
