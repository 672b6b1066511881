package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// unique_violation en el catálogo de errores de Postgres.
const uniqueViolationCode = "23505"

// isUniqueViolation detecta el código SQLSTATE en lugar de buscar texto en el
// mensaje, que depende del locale del servidor.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
