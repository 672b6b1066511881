package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/baggiolabs/baggio/internal/domain/repository"
)

// Counts implementa repository.CountRepository.
func (s *Store) Counts() repository.CountRepository { return &countRepo{s: s} }

type countRepo struct{ s *Store }

func (r *countRepo) FindByTimestampBetween(ctx context.Context, start, end time.Time) (*repository.MonthlyCount, error) {
	const q = `
		SELECT id, views_quantity, new_users_quantity, ts
		FROM monthly_count
		WHERE ts >= $1 AND ts < $2
		ORDER BY ts DESC
		LIMIT 1`
	var c repository.MonthlyCount
	err := r.s.pool.QueryRow(ctx, q, start, end).
		Scan(&c.ID, &c.ViewsQuantity, &c.NewUsersQuantity, &c.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *countRepo) Create(ctx context.Context, c *repository.MonthlyCount) error {
	const q = `
		INSERT INTO monthly_count (views_quantity, new_users_quantity, ts)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := r.s.pool.QueryRow(ctx, q, c.ViewsQuantity, c.NewUsersQuantity, c.Timestamp).Scan(&c.ID)
	// El índice único por mes convierte la carrera entre réplicas en conflicto.
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

// AddDeltas suma incrementos al registro. El UPDATE aditivo serializa el
// read-modify-write a nivel de fila: flushes concurrentes (varias réplicas
// contra el mismo registro mensual) no se pierden.
func (r *countRepo) AddDeltas(ctx context.Context, id int64, views, newUsers int64) error {
	const q = `
		UPDATE monthly_count
		SET views_quantity = views_quantity + $2,
		    new_users_quantity = new_users_quantity + $3
		WHERE id = $1`
	tag, err := r.s.pool.Exec(ctx, q, id, views, newUsers)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *countRepo) LatestN(ctx context.Context, n int) ([]repository.MonthlyCount, error) {
	const q = `
		SELECT id, views_quantity, new_users_quantity, ts
		FROM monthly_count
		ORDER BY ts DESC
		LIMIT $1`
	rows, err := r.s.pool.Query(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.MonthlyCount
	for rows.Next() {
		var c repository.MonthlyCount
		if err := rows.Scan(&c.ID, &c.ViewsQuantity, &c.NewUsersQuantity, &c.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
