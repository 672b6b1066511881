// Package admin arma los datos del dashboard: totales de usuarios, vistas
// del mes en curso y tendencia de registros de los últimos meses.
package admin

import (
	"context"
	"time"

	"github.com/baggiolabs/baggio/internal/domain/repository"
	"github.com/baggiolabs/baggio/internal/stats"
)

const trendMonths = 3

type DashboardService struct {
	users   repository.UserRepository
	countsR repository.CountRepository
	counter *stats.Counter
}

func NewDashboardService(users repository.UserRepository, counts repository.CountRepository, counter *stats.Counter) *DashboardService {
	return &DashboardService{users: users, countsR: counts, counter: counter}
}

// Dashboard es la respuesta agregada para el panel admin.
type Dashboard struct {
	TotalUsers        int64
	NewUsersThisMonth int64
	Views             int64
	StartDay          time.Time
	MonthlyNewUsers   []int64 // últimos trendMonths meses, del más viejo al más nuevo
}

// Build arma el dashboard. Las vistas incluyen los deltas en memoria todavía
// sin flushear (snapshot de CurrentStats), así el panel no corre una hora
// atrás del tráfico real.
func (s *DashboardService) Build(ctx context.Context, now time.Time) (*Dashboard, error) {
	cur, err := s.counter.CurrentStats(ctx, now)
	if err != nil {
		return nil, err
	}

	total, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	start := stats.MonthStart(now)
	newThisMonth, err := s.users.CountCreatedBetween(ctx, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	trend, err := s.monthlyNewUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalUsers:        total,
		NewUsersThisMonth: newThisMonth,
		Views:             cur.Views,
		StartDay:          cur.Timestamp,
		MonthlyNewUsers:   trend,
	}, nil
}

// monthlyNewUsers retorna los new-user counts de los últimos trendMonths
// registros, del más viejo al más nuevo, padded con ceros si hay menos.
func (s *DashboardService) monthlyNewUsers(ctx context.Context) ([]int64, error) {
	latest, err := s.countsR.LatestN(ctx, trendMonths)
	if err != nil {
		return nil, err
	}

	out := make([]int64, trendMonths)
	// LatestN viene más reciente primero; lo damos vuelta.
	for i, c := range latest {
		out[trendMonths-1-i] = c.NewUsersQuantity
	}
	return out, nil
}
