// Package auth contiene los controllers de los endpoints de autenticación.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baggiolabs/baggio/internal/domain/repository"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Login          *LoginController
	Logout         *LogoutController
	Refresh        *RefreshController
	Introspect     *IntrospectController
	ChangePassword *ChangePasswordController
	Magic          *MagicController
	Google         *GoogleController
	Register       *RegisterController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s *svc.Service, google GoogleExchanger, mailer MagicLinkSender, counter NewUserRecorder, magicBaseURL string) *Controllers {
	return &Controllers{
		Login:          &LoginController{service: s},
		Logout:         &LogoutController{service: s},
		Refresh:        &RefreshController{service: s},
		Introspect:     &IntrospectController{service: s},
		ChangePassword: &ChangePasswordController{service: s},
		Magic:          &MagicController{service: s},
		Google:         &GoogleController{service: s, exchanger: google},
		Register:       &RegisterController{service: s, mailer: mailer, counter: counter, magicBaseURL: magicBaseURL},
	}
}

// decodeJSON decodifica el body JSON con límite de tamaño.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAuthError mapea errores del service a la taxonomía HTTP. El lookup
// miss en login se pliega en 401 (anti user-enumeration), igual que token
// malo/expirado/revocado.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrUnauthenticated),
		errors.Is(err, svc.ErrUserNotFound):
		httperrors.WriteError(w, httperrors.ErrUnauthenticated)
	case errors.Is(err, repository.ErrConflict):
		httperrors.WriteError(w, httperrors.ErrConflict)
	default:
		// Fallos de store: 500 genérico, el detalle queda en logs.
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
