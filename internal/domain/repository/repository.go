package repository

import (
	"context"
	"time"
)

// UserRepository lee y actualiza principals. Las queries son explícitas
// (nada de derivación declarativa): cada método es una query concreta.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	// SetActive es un latch one-way en la práctica: el core solo lo llama
	// con active=true al verificar un magic link.
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Para el dashboard admin.
	CountAll(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
}

// RevokedTokenRepository es el set durable de jtis revocados.
// Debe sobrevivir reinicios del proceso: un token deslogueado tiene que
// seguir rechazado durante su vida útil restante aunque haya redeploy.
type RevokedTokenRepository interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Revoke es idempotente: revocar un jti ya revocado es no-op exitoso.
	// expiryTime es el horizonte de revocación que fija el caller (la
	// ventana más tardía del token); el registro debe persistir al menos
	// hasta ahí, aunque el horizonte ya haya pasado.
	Revoke(ctx context.Context, jti string, expiryTime time.Time) error
	// Prune borra registros con expiry_time < now. Housekeeping opcional;
	// la corrección no depende de él.
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// CountRepository persiste los registros mensuales de uso.
type CountRepository interface {
	// FindByTimestampBetween retorna el registro cuyo Timestamp cae en
	// [start, end), o ErrNotFound.
	FindByTimestampBetween(ctx context.Context, start, end time.Time) (*MonthlyCount, error)
	Create(ctx context.Context, c *MonthlyCount) error
	// AddDeltas suma (no reemplaza) los deltas al registro. La suma es
	// asociativa: flushes concurrentes de varias réplicas no se pisan.
	AddDeltas(ctx context.Context, id int64, views, newUsers int64) error
	// LatestN retorna los últimos n registros, más reciente primero.
	LatestN(ctx context.Context, n int) ([]MonthlyCount, error)
}
