package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: uniqueViolationCode, Message: "llave duplicada viola restricción de unicidad"}

	if !isUniqueViolation(unique) {
		t.Fatal("PgError 23505 no detectado")
	}
	if !isUniqueViolation(fmt.Errorf("insert app_user: %w", unique)) {
		t.Fatal("PgError 23505 envuelto no detectado")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign_key_violation tomada por unique")
	}
	if isUniqueViolation(errors.New("duplicate key value violates unique constraint")) {
		t.Fatal("texto suelto no debe contar como unique violation")
	}
	if isUniqueViolation(nil) {
		t.Fatal("nil no es un error")
	}
}
