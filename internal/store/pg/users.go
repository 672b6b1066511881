package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/baggiolabs/baggio/internal/domain/repository"
)

// UserRepo implementa repository.UserRepository.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

type userRepo struct{ s *Store }

const userCols = `id, username, email, password_hash, role, active, created_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	const q = `SELECT ` + userCols + ` FROM app_user WHERE email = LOWER($1)`
	return scanUser(r.s.pool.QueryRow(ctx, q, email))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	const q = `SELECT ` + userCols + ` FROM app_user WHERE username = $1`
	return scanUser(r.s.pool.QueryRow(ctx, q, username))
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	const q = `
		INSERT INTO app_user (username, email, password_hash, role, active, created_at)
		VALUES ($1, LOWER($2), $3, $4, $5, NOW())
		RETURNING id, created_at`
	err := r.s.pool.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash, u.Role, u.Active).
		Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *userRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const q = `UPDATE app_user SET active = $2 WHERE id = $1`
	tag, err := r.s.pool.Exec(ctx, q, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE app_user SET password_hash = $2 WHERE id = $1`
	tag, err := r.s.pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM app_user`).Scan(&n)
	return n, err
}

func (r *userRepo) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	const q = `SELECT COUNT(*) FROM app_user WHERE created_at >= $1 AND created_at < $2`
	var n int64
	err := r.s.pool.QueryRow(ctx, q, start, end).Scan(&n)
	return n, err
}
