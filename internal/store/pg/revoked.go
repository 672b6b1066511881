package pg

import (
	"context"
	"time"

	"github.com/baggiolabs/baggio/internal/domain/repository"
)

// Revoked implementa repository.RevokedTokenRepository.
func (s *Store) Revoked() repository.RevokedTokenRepository { return &revokedRepo{s: s} }

type revokedRepo struct{ s *Store }

func (r *revokedRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM revoked_token WHERE jti = $1)`
	var exists bool
	err := r.s.pool.QueryRow(ctx, q, jti).Scan(&exists)
	return exists, err
}

func (r *revokedRepo) Revoke(ctx context.Context, jti string, expiryTime time.Time) error {
	// ON CONFLICT DO NOTHING: revocar un jti ya revocado es no-op exitoso.
	const q = `
		INSERT INTO revoked_token (jti, expiry_time)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING`
	_, err := r.s.pool.Exec(ctx, q, jti, expiryTime)
	return err
}

func (r *revokedRepo) Prune(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM revoked_token WHERE expiry_time < $1`
	tag, err := r.s.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
