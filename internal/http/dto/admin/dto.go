// Package admin contiene los DTOs del panel de administración.
package admin

import "time"

// DashboardResponse es la respuesta de GET /api/admin/dashboard.
type DashboardResponse struct {
	TotalUsers        int64     `json:"totalUsers"`
	NewUsersThisMonth int64     `json:"newUsersQuantity"`
	Views             int64     `json:"views"`
	StartDay          time.Time `json:"startDay"`
	MonthlyNewUsers   []int64   `json:"users"` // últimos 3 meses, más viejo primero
}
