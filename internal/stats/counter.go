// Package stats implementa el contador de uso: contadores atómicos en
// memoria (page views, registros nuevos) con flush periódico al registro
// mensual persistido, y lectura agregada para el dashboard.
package stats

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/baggiolabs/baggio/internal/domain/repository"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// Counter es el único dueño de los contadores in-memory y el único escritor
// de registros mensuales. Una instancia por proceso: en multi-réplica cada
// instancia flushea al mismo registro del mes y las sumas aditivas del store
// hacen el merge (nunca last-write-wins).
type Counter struct {
	views    atomic.Int64
	newUsers atomic.Int64
	repo     repository.CountRepository
}

func New(repo repository.CountRepository) *Counter {
	return &Counter{repo: repo}
}

// RecordView incrementa el contador de vistas. Lock-free, no bloquea.
func (c *Counter) RecordView() { c.views.Add(1) }

// RecordNewUser incrementa el contador de registros nuevos.
func (c *Counter) RecordNewUser() { c.newUsers.Add(1) }

// MonthStart retorna el instante de inicio del mes calendario de t, en UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EnsureCurrentMonthRecord garantiza que exista el registro del mes de now,
// creándolo en cero si falta. Idempotente: llamadas redundantes no tienen
// efecto después de la primera. Se invoca al arranque del proceso (recuperación
// de un restart a mitad de mes) y desde Flush.
func (c *Counter) EnsureCurrentMonthRecord(ctx context.Context, now time.Time) (*repository.MonthlyCount, error) {
	start := MonthStart(now)
	end := start.AddDate(0, 1, 0)

	rec, err := c.repo.FindByTimestampBetween(ctx, start, end)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	rec = &repository.MonthlyCount{Timestamp: start}
	if err := c.repo.Create(ctx, rec); err != nil {
		// Carrera con otra réplica creando el mismo mes: releer.
		if errors.Is(err, repository.ErrConflict) {
			return c.repo.FindByTimestampBetween(ctx, start, end)
		}
		return nil, err
	}
	logger.From(ctx).Info("created monthly count record", logger.Month(start))
	return rec, nil
}

// Flush lee-y-resetea atómicamente ambos contadores (Swap por contador: los
// incrementos que corren contra el flush caen en el contador ya reseteado y
// entran al próximo flush, no se pierden) y suma los deltas al registro del
// mes vigente al momento del flush. Si el write falla, los deltas se
// re-acreditan en memoria y el error se propaga sin reintentos.
//
// Política de borde de mes: el flush se atribuye entero al mes activo al
// momento de correr, aunque algún incremento haya ocurrido el mes anterior.
func (c *Counter) Flush(ctx context.Context, now time.Time) error {
	v := c.views.Swap(0)
	u := c.newUsers.Swap(0)
	if v == 0 && u == 0 {
		return nil
	}

	rec, err := c.EnsureCurrentMonthRecord(ctx, now)
	if err != nil {
		c.views.Add(v)
		c.newUsers.Add(u)
		return err
	}
	if err := c.repo.AddDeltas(ctx, rec.ID, v, u); err != nil {
		c.views.Add(v)
		c.newUsers.Add(u)
		return err
	}

	logger.From(ctx).Debug("flushed usage counters",
		logger.Views(v), logger.NewUsers(u), logger.Month(MonthStart(now)))
	return nil
}

// CreateNewMonthRecord siembra en cero el registro del mes de now. Se invoca
// en el borde de mes; no arrastra contadores sin flushear del mes anterior
// (esos entran al próximo Flush, atribuidos al mes nuevo).
func (c *Counter) CreateNewMonthRecord(ctx context.Context, now time.Time) error {
	_, err := c.EnsureCurrentMonthRecord(ctx, now)
	return err
}

// Stats es el snapshot de solo lectura para el dashboard.
type Stats struct {
	Views     int64
	NewUsers  int64
	Timestamp time.Time
}

// CurrentStats retorna los totales persistidos del mes actual más los deltas
// en memoria todavía sin flushear. No muta nada.
func (c *Counter) CurrentStats(ctx context.Context, now time.Time) (Stats, error) {
	start := MonthStart(now)
	end := start.AddDate(0, 1, 0)

	var persisted repository.MonthlyCount
	rec, err := c.repo.FindByTimestampBetween(ctx, start, end)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Stats{}, err
	}
	if rec != nil {
		persisted = *rec
	} else {
		persisted.Timestamp = start
	}

	return Stats{
		Views:     persisted.ViewsQuantity + c.views.Load(),
		NewUsers:  persisted.NewUsersQuantity + c.newUsers.Load(),
		Timestamp: persisted.Timestamp,
	}, nil
}
