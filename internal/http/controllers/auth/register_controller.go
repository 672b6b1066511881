package auth

import (
	"errors"
	"net/http"

	"github.com/baggiolabs/baggio/internal/domain/repository"
	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
	"github.com/baggiolabs/baggio/internal/observability/logger"
	"github.com/baggiolabs/baggio/internal/validation"
)

// MagicLinkSender manda el email de activación con el magic link.
type MagicLinkSender interface {
	SendMagicLink(to, link string) error
}

// NewUserRecorder es lo que el registro necesita del contador de uso.
type NewUserRecorder interface {
	RecordNewUser()
}

// RegisterController maneja el alta de usuarios.
type RegisterController struct {
	service      *svc.Service
	mailer       MagicLinkSender
	counter      NewUserRecorder
	magicBaseURL string // ej: https://app.example.com/magic/login
}

// Register maneja POST /api/register. Crea el principal inactivo, cuenta el
// registro y manda el magic link de activación. Si el mail falla, el alta ya
// quedó: se loguea y el caller recibe éxito igual (puede re-pedir el link).
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch {
	case !validation.ValidUsername(req.Username):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("username inválido (3-32 chars, minúsculas, dígitos, . _ -)"))
		return
	case !validation.ValidEmail(req.Email):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email inválido"))
		return
	case !validation.ValidPassword(req.Password):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("password inválido (8-128 caracteres)"))
		return
	}

	u, magic, err := c.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("username o email ya registrado"))
			return
		}
		log.Error("register failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	c.counter.RecordNewUser()

	link := c.magicBaseURL + "/" + magic
	if err := c.mailer.SendMagicLink(u.Email, link); err != nil {
		log.Error("magic link email failed", logger.Email(u.Email), logger.Err(err))
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{Success: true})
}
