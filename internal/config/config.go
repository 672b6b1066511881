package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const minSignerKeyBytes = 32

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		// debug | info | warn | error
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MinIdleConns    int    `yaml:"min_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		Migrate bool `yaml:"migrate"`
	} `yaml:"storage"`

	// Revocation elige dónde vive la denylist de JTI.
	Revocation struct {
		// pg | redis | memory
		Driver string `yaml:"driver"`
		Redis  struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"revocation"`

	JWT struct {
		Issuer string `yaml:"issuer"`
		// Clave simétrica HS512. Mínimo 32 bytes; nunca en el YAML de prod,
		// se inyecta por BAGGIO_JWT_SIGNER_KEY.
		SignerKey     string `yaml:"signer_key"`
		ValidDuration string `yaml:"valid_duration"`
		// Ventana de refresh contada desde iat, independiente de exp.
		RefreshableDuration string `yaml:"refreshable_duration"`
		MagicTTL            string `yaml:"magic_ttl"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Stats struct {
		FlushInterval string `yaml:"flush_interval"`
	} `yaml:"stats"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		// auto | starttls | ssl | none
		TLS string `yaml:"tls"`
	} `yaml:"smtp"`

	Magic struct {
		// Base para construir el enlace mágico del email: <base_url>/<token>
		BaseURL string `yaml:"base_url"`
	} `yaml:"magic"`

	Google struct {
		Enabled      bool   `yaml:"enabled"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"google"`
}

func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Storage.Postgres.MinIdleConns == 0 {
		c.Storage.Postgres.MinIdleConns = 2
	}
	if c.Storage.Postgres.ConnMaxLifetime == "" {
		c.Storage.Postgres.ConnMaxLifetime = "30m"
	}
	if c.Revocation.Driver == "" {
		c.Revocation.Driver = "pg"
	}
	if c.Revocation.Redis.Prefix == "" {
		c.Revocation.Redis.Prefix = "baggio:revoked:"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "baggio"
	}
	if c.JWT.ValidDuration == "" {
		c.JWT.ValidDuration = "1h"
	}
	if c.JWT.RefreshableDuration == "" {
		c.JWT.RefreshableDuration = "336h" // 14d
	}
	if c.JWT.MagicTTL == "" {
		c.JWT.MagicTTL = "15m"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Stats.FlushInterval == "" {
		c.Stats.FlushInterval = "1h"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Magic.BaseURL == "" {
		c.Magic.BaseURL = "http://localhost:8080/magic/login"
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
// Los secretos (clave de firma, DSN, SMTP, Google) van siempre por env en prod.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("BAGGIO_APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("BAGGIO_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := getEnvStr("BAGGIO_SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("BAGGIO_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("BAGGIO_MIGRATE"); ok {
		c.Storage.Migrate = v
	}
	if v, ok := getEnvStr("BAGGIO_REVOCATION_DRIVER"); ok {
		c.Revocation.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("BAGGIO_REDIS_ADDR"); ok {
		c.Revocation.Redis.Addr = v
	}
	if v, ok := getEnvInt("BAGGIO_REDIS_DB"); ok {
		c.Revocation.Redis.DB = v
	}
	if v, ok := getEnvStr("BAGGIO_JWT_SIGNER_KEY"); ok {
		c.JWT.SignerKey = v
	}
	if v, ok := getEnvStr("BAGGIO_JWT_VALID_DURATION"); ok {
		c.JWT.ValidDuration = v
	}
	if v, ok := getEnvStr("BAGGIO_JWT_REFRESHABLE_DURATION"); ok {
		c.JWT.RefreshableDuration = v
	}
	if v, ok := getEnvBool("BAGGIO_RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("BAGGIO_SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("BAGGIO_SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("BAGGIO_SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("BAGGIO_SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("BAGGIO_SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("BAGGIO_MAGIC_BASE_URL"); ok {
		c.Magic.BaseURL = v
	}
	if v, ok := getEnvBool("BAGGIO_GOOGLE_ENABLED"); ok {
		c.Google.Enabled = v
	}
	if v, ok := getEnvStr("BAGGIO_GOOGLE_CLIENT_ID"); ok {
		c.Google.ClientID = v
	}
	if v, ok := getEnvStr("BAGGIO_GOOGLE_CLIENT_SECRET"); ok {
		c.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("BAGGIO_GOOGLE_REDIRECT_URL"); ok {
		c.Google.RedirectURL = v
	}
}

func (c *Config) Validate() error {
	if len(c.JWT.SignerKey) < minSignerKeyBytes {
		return fmt.Errorf("config: jwt signer key must be at least %d bytes, got %d", minSignerKeyBytes, len(c.JWT.SignerKey))
	}
	switch c.Revocation.Driver {
	case "pg", "redis", "memory":
	default:
		return fmt.Errorf("config: unknown revocation driver %q", c.Revocation.Driver)
	}
	if c.Revocation.Driver == "redis" && c.Revocation.Redis.Addr == "" {
		return errors.New("config: revocation.redis.addr required when driver is redis")
	}
	if c.Revocation.Driver != "memory" && c.Storage.DSN == "" {
		return errors.New("config: storage.dsn required (set BAGGIO_DSN)")
	}
	if c.Google.Enabled && (c.Google.ClientID == "" || c.Google.ClientSecret == "") {
		return errors.New("config: google enabled but client_id/client_secret missing")
	}
	for _, d := range []struct{ name, val string }{
		{"storage.postgres.conn_max_lifetime", c.Storage.Postgres.ConnMaxLifetime},
		{"jwt.valid_duration", c.JWT.ValidDuration},
		{"jwt.refreshable_duration", c.JWT.RefreshableDuration},
		{"jwt.magic_ttl", c.JWT.MagicTTL},
		{"rate.login.window", c.Rate.Login.Window},
		{"stats.flush_interval", c.Stats.FlushInterval},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("config: %s: %w", d.name, err)
		}
	}
	return nil
}

// Duraciones ya validadas en Validate; el parseo aquí no puede fallar.

func (c *Config) ValidDuration() time.Duration {
	d, _ := time.ParseDuration(c.JWT.ValidDuration)
	return d
}

func (c *Config) RefreshableDuration() time.Duration {
	d, _ := time.ParseDuration(c.JWT.RefreshableDuration)
	return d
}

func (c *Config) MagicTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.MagicTTL)
	return d
}

func (c *Config) LoginRateWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Login.Window)
	return d
}

func (c *Config) FlushInterval() time.Duration {
	d, _ := time.ParseDuration(c.Stats.FlushInterval)
	return d
}

func (c *Config) ConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime)
	return d
}

func (c *Config) IsProd() bool { return c.App.Env == "prod" }
