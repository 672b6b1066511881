package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baggiolabs/baggio/internal/stats"
	"github.com/baggiolabs/baggio/internal/store/memory"
)

func TestScheduler_PeriodicFlush(t *testing.T) {
	repo := memory.NewCountRepo()
	c := stats.New(repo)
	c.RecordView()
	c.RecordNewUser()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- stats.NewScheduler(c, 20*time.Millisecond).Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		rec, err := repo.FindByTimestampBetween(ctx, stats.MonthStart(time.Now()), stats.MonthStart(time.Now()).AddDate(0, 1, 0))
		if err == nil && rec.ViewsQuantity == 1 && rec.NewUsersQuantity == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("el tick de flush nunca persistió los contadores")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: want context.Canceled, got %v", err)
	}
}

func TestScheduler_FinalFlushOnShutdown(t *testing.T) {
	repo := memory.NewCountRepo()
	c := stats.New(repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	// Intervalo largo: el único flush posible es el de salida.
	go func() { done <- stats.NewScheduler(c, time.Hour).Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	c.RecordView()
	cancel()
	<-done

	rec, err := repo.FindByTimestampBetween(context.Background(),
		stats.MonthStart(time.Now()), stats.MonthStart(time.Now()).AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("registro del mes: %v", err)
	}
	if rec.ViewsQuantity != 1 {
		t.Fatalf("flush final: want 1 vista, got %d", rec.ViewsQuantity)
	}
}
