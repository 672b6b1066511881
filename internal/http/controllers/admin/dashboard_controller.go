// Package admin contiene los controllers del panel de administración.
package admin

import (
	"encoding/json"
	"net/http"
	"time"

	dto "github.com/baggiolabs/baggio/internal/http/dto/admin"
	httperrors "github.com/baggiolabs/baggio/internal/http/errors"
	svc "github.com/baggiolabs/baggio/internal/http/services/admin"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// DashboardController maneja el endpoint de datos del dashboard.
// El scope SCOPE_ADMIN se exige en la ruta, no acá.
type DashboardController struct {
	service *svc.DashboardService
}

func NewDashboardController(s *svc.DashboardService) *DashboardController {
	return &DashboardController{service: s}
}

// Dashboard maneja GET /api/admin/dashboard
func (c *DashboardController) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("DashboardController.Dashboard"))

	d, err := c.service.Build(ctx, time.Now())
	if err != nil {
		log.Error("dashboard build failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(dto.DashboardResponse{
		TotalUsers:        d.TotalUsers,
		NewUsersThisMonth: d.NewUsersThisMonth,
		Views:             d.Views,
		StartDay:          d.StartDay,
		MonthlyNewUsers:   d.MonthlyNewUsers,
	})
}
