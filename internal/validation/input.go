// Package validation concentra las reglas de forma de los datos de alta.
package validation

import (
	"regexp"
	"strings"
)

// Username rules:
// - Lowercase letters, digits, "_", "-" and ".".
// - Start and end with [a-z0-9].
// - Length 3..32.
//
// Examples valid: maria, maria.b, m-2026
// Examples invalid: ab, .maria, maria., MARIA, "con espacio".
var usernameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_.-]{1,30}[a-z0-9])$`)

// Chequeo laxo a propósito: el dueño de la verdad es el mail de activación,
// acá solo se filtra lo obviamente roto.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

func ValidUsername(name string) bool {
	return usernameRe.MatchString(name)
}

func ValidEmail(email string) bool {
	return len(email) <= 254 && emailRe.MatchString(email)
}

// ValidPassword exige solo longitud. Sin reglas de composición: largo mata
// complejidad y no castiga a los password managers.
func ValidPassword(pwd string) bool {
	n := len(pwd)
	return n >= MinPasswordLen && n <= MaxPasswordLen && strings.TrimSpace(pwd) != ""
}
