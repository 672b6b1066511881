package stats

import (
	"context"
	"time"

	"github.com/baggiolabs/baggio/internal/metrics"
	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// Scheduler maneja los dos timers del contador: flush periódico (por defecto
// horario) y creación del registro al borde de mes.
type Scheduler struct {
	Counter       *Counter
	FlushInterval time.Duration
}

func NewScheduler(c *Counter, flushInterval time.Duration) *Scheduler {
	if flushInterval <= 0 {
		flushInterval = time.Hour
	}
	return &Scheduler{Counter: c, FlushInterval: flushInterval}
}

// Run corre hasta que ctx se cancele. Al salir hace un último flush para no
// perder los contadores acumulados del tick en curso.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.Named("stats")

	flushTicker := time.NewTicker(s.FlushInterval)
	defer flushTicker.Stop()

	// Timer armado al próximo inicio de mes; se re-arma en cada disparo.
	monthTimer := time.NewTimer(untilNextMonth(time.Now()))
	defer monthTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s.Counter.Flush(flushCtx, time.Now()); err != nil {
				log.Warn("final flush failed", logger.Err(err))
			}
			cancel()
			return ctx.Err()

		case now := <-flushTicker.C:
			if err := s.Counter.Flush(ctx, now); err != nil {
				metrics.CounterFlushes.WithLabelValues("error").Inc()
				log.Error("flush failed", logger.Err(err))
			} else {
				metrics.CounterFlushes.WithLabelValues("ok").Inc()
			}

		case now := <-monthTimer.C:
			if err := s.Counter.CreateNewMonthRecord(ctx, now); err != nil {
				log.Error("month rollover failed", logger.Err(err))
			}
			monthTimer.Reset(untilNextMonth(time.Now()))
		}
	}
}

func untilNextMonth(now time.Time) time.Duration {
	next := MonthStart(now).AddDate(0, 1, 0)
	return time.Until(next)
}
