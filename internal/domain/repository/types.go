package repository

import "time"

// User es el principal del sistema. El core solo lo lee, salvo dos
// excepciones: Active (latch de activación por magic link) y PasswordHash
// (cambio de password).
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string // un solo rol por usuario ("USER", "ADMIN")
	Active       bool
	CreatedAt    time.Time
}

// RevokedToken marca un jti como no honorable hasta que el token expire
// naturalmente. Nunca se muta; el borrado post-expiry es housekeeping
// opcional (el token expirado falla la verificación igual).
type RevokedToken struct {
	JTI        string
	ExpiryTime time.Time
}

// MonthlyCount es el registro persistido de un mes calendario.
// Timestamp cae dentro de [inicioDeMes, inicioDeMes+1mes).
type MonthlyCount struct {
	ID               int64
	ViewsQuantity    int64
	NewUsersQuantity int64
	Timestamp        time.Time
}
