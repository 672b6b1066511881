// Package auth implementa el Session Manager: orquesta login, verificación,
// logout, refresh, cambio de password, magic login y login federado,
// combinando el codec JWT, el store de revocación y el repo de usuarios.
//
// Máquina de estados por token (no por usuario):
//
//	Issued → Active → {Expired | Revoked}
//
// Expired y Revoked son terminales y hacia afuera son indistinguibles:
// ambos fallan con ErrUnauthenticated.
package auth

import (
	"context"
	"errors"
	"time"

	jwtx "github.com/baggiolabs/baggio/internal/jwt"

	"github.com/baggiolabs/baggio/internal/domain/repository"
	"github.com/baggiolabs/baggio/internal/observability/logger"
	"github.com/baggiolabs/baggio/internal/security/password"
	tokens "github.com/baggiolabs/baggio/internal/security/token"
)

var (
	// ErrUnauthenticated cubre password malo y token inválido/expirado/
	// revocado. La distinción es bookkeeping interno, nunca del caller.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUserNotFound es un miss de lookup de principal. En el login se
	// pliega en ErrUnauthenticated (anti user-enumeration).
	ErrUserNotFound = errors.New("user not found")
)

// Service es el Session Manager. Todas las operaciones reciben el principal o
// el token explícitamente: nada se lee de contexto implícito de seguridad.
type Service struct {
	users   repository.UserRepository
	revoked repository.RevokedTokenRepository
	codec   *jwtx.Codec

	validDuration       time.Duration // ventana de uso access
	refreshableDuration time.Duration // ventana de refresh desde iat
	magicTTL            time.Duration // vida de un magic link
}

type Config struct {
	ValidDuration       time.Duration
	RefreshableDuration time.Duration
	MagicTTL            time.Duration
}

func NewService(users repository.UserRepository, revoked repository.RevokedTokenRepository, codec *jwtx.Codec, cfg Config) *Service {
	if cfg.MagicTTL <= 0 {
		cfg.MagicTTL = 15 * time.Minute
	}
	return &Service{
		users:               users,
		revoked:             revoked,
		codec:               codec,
		validDuration:       cfg.ValidDuration,
		refreshableDuration: cfg.RefreshableDuration,
		magicTTL:            cfg.MagicTTL,
	}
}

// Authenticate verifica email+password y emite un token de sesión.
func (s *Service) Authenticate(ctx context.Context, email, pwd string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.Authenticate"))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if !password.Verify(pwd, u.PasswordHash) {
		log.Debug("password mismatch", logger.Email(email))
		return "", ErrUnauthenticated
	}
	return s.codec.Issue(u, s.validDuration)
}

// Verify parsea, verifica firma, chequea expiración según intención y
// consulta el store de revocación (siempre, sin cache).
//
//   - isRefresh=false: expira en exp (uso access).
//   - isRefresh=true:  expira en iat+refreshableDuration. Un token puede ser
//     refresheable más allá de su validez access, o al revés, por config.
func (s *Service) Verify(ctx context.Context, raw string, isRefresh bool) (*jwtx.Claims, error) {
	claims, err := s.codec.Parse(raw)
	if err != nil {
		// Malformado o firma mala: mismo resultado externo.
		return nil, ErrUnauthenticated
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil || claims.ID == "" {
		return nil, ErrUnauthenticated
	}

	var expiry time.Time
	if isRefresh {
		expiry = claims.IssuedAt.Add(s.refreshableDuration)
	} else {
		expiry = claims.ExpiresAt.Time
	}
	if !time.Now().Before(expiry) {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Logout revoca el jti del token hasta su expiración natural. Un token ya
// inválido se trata como logout exitoso: el fallo de verificación se loguea
// y se traga, nunca llega al caller. Solo un fallo del store al persistir la
// revocación se propaga.
func (s *Service) Logout(ctx context.Context, raw string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.Logout"))

	claims, err := s.Verify(ctx, raw, false)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			log.Debug("logout of invalid token ignored", logger.Err(err))
			return nil
		}
		return err
	}

	if err := s.revoked.Revoke(ctx, claims.ID, s.revocationHorizon(claims)); err != nil {
		return err
	}
	log.Info("token revoked", logger.JTI(claims.ID))
	return nil
}

// revocationHorizon es hasta cuándo debe persistir una revocación: la más
// tardía de las dos ventanas del token. Revocar solo hasta exp dejaría al
// jti reutilizable para refresh cuando el store lo olvidara.
func (s *Service) revocationHorizon(claims *jwtx.Claims) time.Time {
	horizon := claims.ExpiresAt.Time
	if r := claims.IssuedAt.Add(s.refreshableDuration); r.After(horizon) {
		horizon = r
	}
	return horizon
}

// Refresh canjea un token refresheable por uno nuevo. Single-use: el token
// presentado se revoca ANTES de emitir el nuevo; si la revocación no
// persiste, el refresh aborta (nunca emitir dejando el viejo vivo).
func (s *Service) Refresh(ctx context.Context, raw string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.Refresh"))

	claims, err := s.Verify(ctx, raw, true)
	if err != nil {
		return "", err
	}

	// Verify ya consultó la revocación, pero el doble-check explícito achica
	// la ventana de carrera entre dos refresh simultáneos del mismo token.
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrUnauthenticated
	}

	if err := s.revoked.Revoke(ctx, claims.ID, s.revocationHorizon(claims)); err != nil {
		return "", err
	}

	u, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	log.Info("token refreshed", logger.JTI(claims.ID), logger.Username(u.Username))
	return s.codec.Issue(u, s.validDuration)
}

// Introspect reporta si el token sería aceptado para refresh. Cualquier
// fallo de verificación se pliega en valid=false, nunca en error.
func (s *Service) Introspect(ctx context.Context, raw string) bool {
	_, err := s.Verify(ctx, raw, true)
	return err == nil
}

// ChangePassword verifica el token en modo access (el flujo original lo
// hacía en modo refresh; decisión deliberada de corregirlo: cambiar el
// password es un uso normal de sesión, no un canje), chequea el password
// viejo y persiste el hash del nuevo.
func (s *Service) ChangePassword(ctx context.Context, raw, oldPwd, newPwd string) error {
	claims, err := s.Verify(ctx, raw, false)
	if err != nil {
		return err
	}

	u, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !password.Verify(oldPwd, u.PasswordHash) {
		return ErrUnauthenticated
	}

	hash, err := password.Hash(password.Default, newPwd)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}

// MagicLogin valida un token de magic link (modo access), activa al
// principal si todavía no lo está (latch one-way: el token sigue siendo
// válido hasta expirar o revocarse, la idempotencia de la activación la da
// el flag) y emite un token de sesión fresco.
func (s *Service) MagicLogin(ctx context.Context, raw string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.MagicLogin"))

	claims, err := s.Verify(ctx, raw, false)
	if err != nil {
		return "", err
	}

	u, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if !u.Active {
		if err := s.users.SetActive(ctx, u.ID, true); err != nil {
			return "", err
		}
		u.Active = true
		log.Info("account activated", logger.UserID(u.ID), logger.Username(u.Username))
	}

	return s.codec.Issue(u, s.validDuration)
}

// IssueMagicToken emite el token corto que viaja en el magic link.
func (s *Service) IssueMagicToken(u *repository.User) (string, error) {
	return s.codec.Issue(u, s.magicTTL)
}

// AuthenticateFederated emite un token para un email ya autenticado por un
// identity provider externo. Sin chequeo de password acá: la confianza está
// delegada. Si el principal no existe se crea activo, con username=email y
// un password aleatorio inutilizable.
func (s *Service) AuthenticateFederated(ctx context.Context, email string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Auth.AuthenticateFederated"))

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		u, err = s.createFederatedUser(ctx, email)
		if err == nil {
			log.Info("federated user created", logger.Email(email), logger.UserID(u.ID))
		}
	}
	if err != nil {
		return "", err
	}
	return s.codec.Issue(u, s.validDuration)
}

func (s *Service) createFederatedUser(ctx context.Context, email string) (*repository.User, error) {
	random, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(password.Default, random)
	if err != nil {
		return nil, err
	}
	u := &repository.User{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		Role:         "USER",
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Carrera con otro callback del mismo email: releer.
		if errors.Is(err, repository.ErrConflict) {
			return s.users.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return u, nil
}

// Register crea un principal inactivo con rol USER y retorna el usuario más
// el magic token de activación. El controller manda el email y cuenta el
// registro; acá solo vive la creación.
func (s *Service) Register(ctx context.Context, username, email, pwd string) (*repository.User, string, error) {
	hash, err := password.Hash(password.Default, pwd)
	if err != nil {
		return nil, "", err
	}
	u := &repository.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         "USER",
		Active:       false,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	magic, err := s.IssueMagicToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, magic, nil
}

// Codec expone el codec para los middlewares que solo necesitan parsear.
func (s *Service) Codec() *jwtx.Codec { return s.codec }
