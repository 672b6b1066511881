// Package redis implementa el RevokedTokenRepository sobre Redis.
//
// Cada jti revocado se guarda como key con TTL hasta el horizonte de
// revocación que indica el caller (la ventana más tardía del token): Redis
// hace el pruning solo, y con persistencia (AOF/RDB) el set sobrevive
// reinicios, que es el requisito duro de la revocación.
package redis

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/baggiolabs/baggio/internal/domain/repository"
)

type RevokedStore struct {
	c      *rdb.Client
	prefix string
}

func New(addr string, db int, prefix string) *RevokedStore {
	if prefix == "" {
		prefix = "baggio:revoked:"
	}
	return &RevokedStore{
		c:      rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix: prefix,
	}
}

var _ repository.RevokedTokenRepository = (*RevokedStore)(nil)

func (s *RevokedStore) key(jti string) string { return s.prefix + jti }

func (s *RevokedStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.c.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RevokedStore) Revoke(ctx context.Context, jti string, expiryTime time.Time) error {
	ttl := time.Until(expiryTime)
	if ttl <= 0 {
		// Horizonte ya pasado: se registra igual con vida mínima, nunca
		// se reporta revocado sin persistir.
		ttl = time.Second
	}
	// SET NX: revocar dos veces no pisa el TTL original.
	return s.c.SetNX(ctx, s.key(jti), "1", ttl).Err()
}

// Prune es no-op: Redis expira las keys por TTL.
func (s *RevokedStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// Client expone el cliente subyacente para otros usos del mismo Redis
// (rate limiting).
func (s *RevokedStore) Client() *rdb.Client { return s.c }

func (s *RevokedStore) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *RevokedStore) Close() error { return s.c.Close() }
