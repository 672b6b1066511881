package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/baggiolabs/baggio/internal/config"
)

const testKey = "0123456789abcdef0123456789abcdef"

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_DefaultsAndDurations(t *testing.T) {
	p := writeYAML(t, `
storage:
  dsn: postgres://localhost/baggio
jwt:
  signer_key: "`+testKey+`"
`)
	c, err := config.Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("addr default: got %q", c.Server.Addr)
	}
	if c.JWT.Issuer != "baggio" {
		t.Errorf("issuer default: got %q", c.JWT.Issuer)
	}
	if c.Revocation.Driver != "pg" {
		t.Errorf("revocation driver default: got %q", c.Revocation.Driver)
	}
	if got := c.ValidDuration(); got != time.Hour {
		t.Errorf("valid duration default: got %v", got)
	}
	if got := c.RefreshableDuration(); got != 336*time.Hour {
		t.Errorf("refreshable duration default: got %v", got)
	}
	if got := c.FlushInterval(); got != time.Hour {
		t.Errorf("flush interval default: got %v", got)
	}
}

func TestLoad_RejectsShortSignerKey(t *testing.T) {
	p := writeYAML(t, `
storage:
  dsn: postgres://localhost/baggio
jwt:
  signer_key: corta
`)
	if _, err := config.Load(p); err == nil {
		t.Fatal("clave corta tiene que fallar la validación")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BAGGIO_JWT_SIGNER_KEY", testKey)
	t.Setenv("BAGGIO_SERVER_ADDR", ":9999")
	t.Setenv("BAGGIO_DSN", "postgres://env/baggio")
	t.Setenv("BAGGIO_REVOCATION_DRIVER", "memory")

	c, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":9999" {
		t.Errorf("addr: got %q", c.Server.Addr)
	}
	if c.Storage.DSN != "postgres://env/baggio" {
		t.Errorf("dsn: got %q", c.Storage.DSN)
	}
	if c.Revocation.Driver != "memory" {
		t.Errorf("driver: got %q", c.Revocation.Driver)
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("BAGGIO_JWT_SIGNER_KEY", testKey)
	t.Setenv("BAGGIO_DSN", "postgres://localhost/baggio")
	t.Setenv("BAGGIO_REVOCATION_DRIVER", "mongo")

	if _, err := config.Load(""); err == nil {
		t.Fatal("driver desconocido tiene que fallar")
	}
}
