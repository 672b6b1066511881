package stats_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baggiolabs/baggio/internal/domain/repository"
	"github.com/baggiolabs/baggio/internal/stats"
	"github.com/baggiolabs/baggio/internal/store/memory"
)

var now = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func monthRecord(t *testing.T, repo repository.CountRepository, at time.Time) *repository.MonthlyCount {
	t.Helper()
	start := stats.MonthStart(at)
	rec, err := repo.FindByTimestampBetween(context.Background(), start, start.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("record del mes: %v", err)
	}
	return rec
}

func TestMonthStart(t *testing.T) {
	got := stats.MonthStart(now)
	want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("MonthStart: want %v, got %v", want, got)
	}
}

func TestRecord_ConcurrentIncrements(t *testing.T) {
	c := stats.New(memory.NewCountRepo())

	const goroutines = 8
	const perG = 1000
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				c.RecordView()
				if j%2 == 0 {
					c.RecordNewUser()
				}
			}
		}()
	}
	wg.Wait()

	s, err := c.CurrentStats(context.Background(), now)
	if err != nil {
		t.Fatalf("CurrentStats: %v", err)
	}
	if s.Views != goroutines*perG {
		t.Errorf("views: want %d, got %d", goroutines*perG, s.Views)
	}
	if s.NewUsers != goroutines*perG/2 {
		t.Errorf("new users: want %d, got %d", goroutines*perG/2, s.NewUsers)
	}
}

func TestEnsureCurrentMonthRecord_Idempotent(t *testing.T) {
	repo := memory.NewCountRepo()
	c := stats.New(repo)
	ctx := context.Background()

	a, err := c.EnsureCurrentMonthRecord(ctx, now)
	if err != nil {
		t.Fatalf("primera llamada: %v", err)
	}
	b, err := c.EnsureCurrentMonthRecord(ctx, now.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("segunda llamada: %v", err)
	}
	if a.ID != b.ID {
		t.Fatalf("dos registros para el mismo mes: %d y %d", a.ID, b.ID)
	}
	if !a.Timestamp.Equal(stats.MonthStart(now)) {
		t.Errorf("timestamp: want %v, got %v", stats.MonthStart(now), a.Timestamp)
	}
}

func TestFlush_AccumulatesDeltas(t *testing.T) {
	repo := memory.NewCountRepo()
	c := stats.New(repo)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		c.RecordView()
	}
	c.RecordNewUser()
	if err := c.Flush(ctx, now); err != nil {
		t.Fatalf("flush 1: %v", err)
	}

	for i := 0; i < 5; i++ {
		c.RecordView()
	}
	c.RecordNewUser()
	c.RecordNewUser()
	if err := c.Flush(ctx, now.Add(time.Hour)); err != nil {
		t.Fatalf("flush 2: %v", err)
	}

	rec := monthRecord(t, repo, now)
	if rec.ViewsQuantity != 15 || rec.NewUsersQuantity != 3 {
		t.Fatalf("persistido: want {15 3}, got {%d %d}", rec.ViewsQuantity, rec.NewUsersQuantity)
	}

	// Los contadores quedaron en cero.
	s, err := c.CurrentStats(ctx, now)
	if err != nil {
		t.Fatalf("CurrentStats: %v", err)
	}
	if s.Views != 15 || s.NewUsers != 3 {
		t.Fatalf("stats tras flush: want {15 3}, got {%d %d}", s.Views, s.NewUsers)
	}
}

func TestFlush_NothingToDo(t *testing.T) {
	repo := memory.NewCountRepo()
	c := stats.New(repo)

	if err := c.Flush(context.Background(), now); err != nil {
		t.Fatalf("flush vacío: %v", err)
	}
	// Sin actividad no se crea registro.
	start := stats.MonthStart(now)
	if _, err := repo.FindByTimestampBetween(context.Background(), start, start.AddDate(0, 1, 0)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("flush vacío creó un registro: %v", err)
	}
}

// failingCounts fuerza fallos de escritura para probar la re-acreditación.
type failingCounts struct {
	repository.CountRepository
	failAdd bool
}

func (f *failingCounts) AddDeltas(ctx context.Context, id int64, views, newUsers int64) error {
	if f.failAdd {
		return errors.New("db down")
	}
	return f.CountRepository.AddDeltas(ctx, id, views, newUsers)
}

func TestFlush_RecreditsOnPersistFailure(t *testing.T) {
	repo := &failingCounts{CountRepository: memory.NewCountRepo(), failAdd: true}
	c := stats.New(repo)
	ctx := context.Background()

	c.RecordView()
	c.RecordView()
	c.RecordNewUser()

	if err := c.Flush(ctx, now); err == nil {
		t.Fatal("flush con store caído debe fallar")
	}

	// Nada se perdió: el próximo flush persiste los mismos deltas.
	repo.failAdd = false
	if err := c.Flush(ctx, now); err != nil {
		t.Fatalf("flush de recuperación: %v", err)
	}
	rec := monthRecord(t, repo, now)
	if rec.ViewsQuantity != 2 || rec.NewUsersQuantity != 1 {
		t.Fatalf("persistido tras recuperación: want {2 1}, got {%d %d}", rec.ViewsQuantity, rec.NewUsersQuantity)
	}
}

func TestFlush_MonthBoundaryAttribution(t *testing.T) {
	repo := memory.NewCountRepo()
	c := stats.New(repo)
	ctx := context.Background()

	// Actividad en marzo que recién se flushea en abril: se atribuye a abril.
	c.RecordView()
	april := time.Date(2026, time.April, 1, 0, 0, 5, 0, time.UTC)
	if err := c.Flush(ctx, april); err != nil {
		t.Fatalf("flush: %v", err)
	}

	rec := monthRecord(t, repo, april)
	if rec.ViewsQuantity != 1 {
		t.Fatalf("views de abril: want 1, got %d", rec.ViewsQuantity)
	}
	start := stats.MonthStart(now)
	if _, err := repo.FindByTimestampBetween(ctx, start, start.AddDate(0, 1, 0)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("no debería existir registro de marzo")
	}
}

func TestCurrentStats_IncludesUnflushedDeltas(t *testing.T) {
	repo := memory.NewCountRepo()
	c := stats.New(repo)
	ctx := context.Background()

	c.RecordView()
	if err := c.Flush(ctx, now); err != nil {
		t.Fatalf("flush: %v", err)
	}
	c.RecordView()
	c.RecordNewUser()

	s, err := c.CurrentStats(ctx, now)
	if err != nil {
		t.Fatalf("CurrentStats: %v", err)
	}
	if s.Views != 2 || s.NewUsers != 1 {
		t.Fatalf("want {2 1}, got {%d %d}", s.Views, s.NewUsers)
	}

	// Leer no flushea.
	rec := monthRecord(t, repo, now)
	if rec.ViewsQuantity != 1 || rec.NewUsersQuantity != 0 {
		t.Fatalf("CurrentStats mutó el store: {%d %d}", rec.ViewsQuantity, rec.NewUsersQuantity)
	}
}
