package password_test

import (
	"strings"
	"testing"

	"github.com/baggiolabs/baggio/internal/security/password"
)

// Params chicos para que el test no queme memoria/CPU.
var fast = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	phc, err := password.Hash(fast, "s3creta!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$") {
		t.Fatalf("PHC inesperado: %q", phc)
	}
	if !password.Verify("s3creta!", phc) {
		t.Error("Verify rechazó el password correcto")
	}
	if password.Verify("otra", phc) {
		t.Error("Verify aceptó un password incorrecto")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	a, _ := password.Hash(fast, "mismo")
	b, _ := password.Hash(fast, "mismo")
	if a == b {
		t.Fatal("dos hashes del mismo password son idénticos (salt repetido)")
	}
}

func TestVerify_GarbageInput(t *testing.T) {
	for _, phc := range []string{"", "no-phc", "$argon2id$solo$tres", "$argon2i$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA"} {
		if password.Verify("algo", phc) {
			t.Errorf("Verify(%q) aceptó un hash inválido", phc)
		}
	}
}
