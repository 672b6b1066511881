// Package jwt implementa el codec de tokens de sesión: emisión y parseo de
// JWTs firmados con HMAC-SHA512 sobre una clave simétrica de proceso.
//
// El codec NO valida expiración: el service de auth decide contra qué
// ventana comparar (access vs refresh), así que acá solo se verifica firma
// y forma. Tampoco toca storage: es puro cómputo sobre la clave configurada.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/baggiolabs/baggio/internal/domain/repository"
)

// MinKeyBytes es el mínimo de material de clave aceptado para HS512.
const MinKeyBytes = 32

var (
	// ErrMalformedToken indica que el string no se pudo decodificar como
	// header+claims+signature.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidSignature indica firma HMAC inválida.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrKeyTooShort indica clave de firma con menos de MinKeyBytes bytes.
	ErrKeyTooShort = fmt.Errorf("signing key shorter than %d bytes", MinKeyBytes)
)

// Claims son los claims de un token de sesión.
// Scope deriva del rol del principal ("SCOPE_<ROLE>", vacío si no hay rol).
// UserID viaja en el claim "id".
type Claims struct {
	Scope  string `json:"scope"`
	UserID int64  `json:"id"`
	jwtv5.RegisteredClaims
}

// Codec firma y parsea tokens con una clave simétrica cargada al arranque.
// No tiene estado mutable; es seguro compartirlo entre goroutines.
type Codec struct {
	issuer string
	key    []byte
}

// NewCodec crea un codec. Falla si la clave tiene menos de MinKeyBytes bytes.
func NewCodec(issuer string, key []byte) (*Codec, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrKeyTooShort
	}
	return &Codec{issuer: issuer, key: key}, nil
}

// Issuer retorna el issuer configurado (claim "iss" de todo token emitido).
func (c *Codec) Issuer() string { return c.issuer }

// Issue emite un token firmado para el principal con la duración dada.
// jti es un UUID fresco por emisión (clave de revocación).
func (c *Codec) Issue(u *repository.User, validDuration time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Scope:  BuildScope(u),
		UserID: u.ID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    c.issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(validDuration)),
			ID:        uuid.NewString(),
		},
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, claims)
	return tk.SignedString(c.key)
}

// Parse decodifica y verifica la firma de un token. No valida expiración
// (ver doc del package). Retorna ErrMalformedToken si el string no es un
// JWT, ErrInvalidSignature si la firma no cierra con la clave configurada.
func (c *Codec) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwtv5.ParseWithClaims(raw, claims,
		func(*jwtv5.Token) (any, error) { return c.key, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS512.Alg()}),
		jwtv5.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, err
		}
	}
	return claims, nil
}

// BuildScope deriva el scope del rol: "SCOPE_<ROLE>", o vacío sin rol.
// Modelo de rol único: no hay set de roles simultáneos por principal.
func BuildScope(u *repository.User) string {
	if u.Role == "" {
		return ""
	}
	return "SCOPE_" + u.Role
}
