package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/baggiolabs/baggio/internal/util"
)

// Campos estándar para logs estructurados. Usar siempre estos helpers en vez
// de zap.String directo, así los nombres de campo quedan consistentes.

// ─── HTTP ───

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ─── Negocio ───

// UserID crea un campo para el ID del usuario.
func UserID(v int64) zap.Field {
	return zap.Int64("user_id", v)
}

// Username crea un campo para el username.
func Username(v string) zap.Field {
	return zap.String("username", v)
}

// Email crea un campo para el email, enmascarado: los logs no son lugar
// para PII en claro.
func Email(v string) zap.Field {
	return zap.String("email", util.MaskEmail(v))
}

// JTI crea un campo para el ID de un token (jti).
func JTI(v string) zap.Field {
	return zap.String("jti", v)
}

// Views crea un campo para un conteo de vistas.
func Views(v int64) zap.Field {
	return zap.Int64("views", v)
}

// NewUsers crea un campo para un conteo de usuarios nuevos.
func NewUsers(v int64) zap.Field {
	return zap.Int64("new_users", v)
}

// Month crea un campo para el inicio de mes de un registro de conteo.
func Month(v time.Time) zap.Field {
	return zap.Time("month", v)
}

// ─── Sistema ───

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, repository).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}
