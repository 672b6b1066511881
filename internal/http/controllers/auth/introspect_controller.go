package auth

import (
	"net/http"

	dto "github.com/baggiolabs/baggio/internal/http/dto/auth"
	svc "github.com/baggiolabs/baggio/internal/http/services/auth"
)

// IntrospectController maneja el endpoint de introspección.
type IntrospectController struct {
	service *svc.Service
}

// Introspect maneja POST /api/auth/introspect. Responde {valid}; nunca 401:
// un token inválido es una respuesta válida con valid=false.
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	valid := c.service.Introspect(r.Context(), req.Token)
	writeJSON(w, http.StatusOK, dto.IntrospectResponse{Valid: valid})
}
