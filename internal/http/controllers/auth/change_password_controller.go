package auth

import (
	"net/http"

	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// ChangePasswordController maneja el cambio de password.
type ChangePasswordController struct {
	service *svc.Service
}

// ChangePassword maneja POST /api/auth/change-password
func (c *ChangePasswordController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ChangePasswordController.ChangePassword"))

	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("newPassword es obligatorio"))
		return
	}

	if err := c.service.ChangePassword(ctx, req.Token, req.OldPassword, req.NewPassword); err != nil {
		log.Debug("change password failed", logger.Err(err))
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
