// Package memory implementa los repositorios de dominio en memoria.
//
// Pensado para desarrollo y tests: NO sobrevive reinicios, así que no sirve
// como Revocation Store de producción (un logout se olvidaría en el redeploy).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/baggiolabs/baggio/internal/domain/repository"
)

// ─── Users ───

type UserRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*repository.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[int64]*repository.User)}
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) Create(ctx context.Context, u *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byID {
		if strings.EqualFold(e.Email, u.Email) || e.Username == u.Username {
			return repository.ErrConflict
		}
	}
	r.nextID++
	u.ID = r.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = active
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *UserRepo) CountAll(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *UserRepo) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.byID {
		if !u.CreatedAt.Before(start) && u.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

// ─── Revoked tokens ───

// RevokedRepo guarda los jtis en un go-cache con TTL nativo: cada entrada
// expira sola cuando pasa el horizonte de revocación que indica el caller.
type RevokedRepo struct {
	c *gocache.Cache
}

func NewRevokedRepo() *RevokedRepo {
	return &RevokedRepo{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

var _ repository.RevokedTokenRepository = (*RevokedRepo)(nil)

func (r *RevokedRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, found := r.c.Get(jti)
	return found, nil
}

func (r *RevokedRepo) Revoke(ctx context.Context, jti string, expiryTime time.Time) error {
	ttl := time.Until(expiryTime)
	if ttl <= 0 {
		ttl = time.Second
	}
	// Add (no Set): no pisa el TTL si ya estaba revocado.
	_ = r.c.Add(jti, struct{}{}, ttl)
	return nil
}

func (r *RevokedRepo) Prune(ctx context.Context, now time.Time) (int64, error) {
	before := r.c.ItemCount()
	r.c.DeleteExpired()
	return int64(before - r.c.ItemCount()), nil
}

// ─── Monthly counts ───

type CountRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []*repository.MonthlyCount
}

func NewCountRepo() *CountRepo { return &CountRepo{} }

var _ repository.CountRepository = (*CountRepo)(nil)

func (r *CountRepo) FindByTimestampBetween(ctx context.Context, start, end time.Time) (*repository.MonthlyCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *repository.MonthlyCount
	for _, c := range r.rows {
		if !c.Timestamp.Before(start) && c.Timestamp.Before(end) {
			if best == nil || c.Timestamp.After(best.Timestamp) {
				best = c
			}
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *CountRepo) Create(ctx context.Context, c *repository.MonthlyCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *CountRepo) AddDeltas(ctx context.Context, id int64, views, newUsers int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.ID == id {
			c.ViewsQuantity += views
			c.NewUsersQuantity += newUsers
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *CountRepo) LatestN(ctx context.Context, n int) ([]repository.MonthlyCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.MonthlyCount, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
