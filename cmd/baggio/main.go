package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/baggiolabs/baggio/internal/config"
	"github.com/baggiolabs/baggio/internal/domain/repository"
	"github.com/baggiolabs/baggio/internal/email"
	httpserver "github.com/baggiolabs/baggio/internal/http"
	adminctrl "github.com/baggiolabs/baggio/internal/http/controllers/admin"
	authctrl "github.com/baggiolabs/baggio/internal/http/controllers/auth"
	healthctrl "github.com/baggiolabs/baggio/internal/http/controllers/health"
	"github.com/baggiolabs/baggio/internal/http/router"
	adminsvc "github.com/baggiolabs/baggio/internal/http/services/admin"
	authsvc "github.com/baggiolabs/baggio/internal/http/services/auth"
	jwtx "github.com/baggiolabs/baggio/internal/jwt"
	"github.com/baggiolabs/baggio/internal/metrics"
	"github.com/baggiolabs/baggio/internal/oauth/google"
	"github.com/baggiolabs/baggio/internal/observability/logger"
	"github.com/baggiolabs/baggio/internal/rate"
	"github.com/baggiolabs/baggio/internal/security/password"
	"github.com/baggiolabs/baggio/internal/stats"
	"github.com/baggiolabs/baggio/internal/store/memory"
	"github.com/baggiolabs/baggio/internal/store/pg"
	redisstore "github.com/baggiolabs/baggio/internal/store/redis"
	migrations "github.com/baggiolabs/baggio/migrations/postgres"
)

func main() {
	var cfgPath, envFile string

	root := &cobra.Command{
		Use:           "baggio",
		Short:         "Backend de la librería Baggio (auth, sesiones y estadísticas)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "ruta del config YAML")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "archivo .env (opcional)")

	root.AddCommand(serveCmd(&cfgPath, &envFile))
	root.AddCommand(migrateCmd(&cfgPath, &envFile))
	root.AddCommand(seedCmd(&cfgPath, &envFile))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(cfgPath, envFile string) (*config.Config, error) {
	// .env es best-effort: en prod las vars vienen del entorno real.
	_ = godotenv.Load(envFile)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfgPath = ""
	}
	return config.Load(cfgPath)
}

// repos agrupa las implementaciones elegidas por configuración.
type repos struct {
	users   repository.UserRepository
	revoked repository.RevokedTokenRepository
	counts  repository.CountRepository

	pinger healthctrl.Pinger
	redis  *redisstore.RevokedStore // nil salvo driver redis
	close  func()
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

func buildRepos(ctx context.Context, cfg *config.Config) (*repos, error) {
	if cfg.Revocation.Driver == "memory" && cfg.Storage.DSN == "" {
		// Modo dev sin infraestructura: todo en memoria.
		return &repos{
			users:   memory.NewUserRepo(),
			revoked: memory.NewRevokedRepo(),
			counts:  memory.NewCountRepo(),
			pinger:  noopPinger{},
			close:   func() {},
		}, nil
	}

	store, err := pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MinIdleConns:    cfg.Storage.Postgres.MinIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Migrate {
		if err := store.RunMigrations(ctx, migrations.FS); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	r := &repos{
		users:  store.Users(),
		counts: store.Counts(),
		pinger: store,
		close:  store.Close,
	}

	switch cfg.Revocation.Driver {
	case "redis":
		rs := redisstore.New(cfg.Revocation.Redis.Addr, cfg.Revocation.Redis.DB, cfg.Revocation.Redis.Prefix)
		r.revoked = rs
		r.redis = rs
		prev := r.close
		r.close = func() { _ = rs.Close(); prev() }
	case "memory":
		r.revoked = memory.NewRevokedRepo()
	default:
		r.revoked = store.Revoked()
	}
	return r, nil
}

func serveCmd(cfgPath, envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *envFile)
			if err != nil {
				return err
			}

			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "baggio"})
			defer func() { _ = logger.Sync() }()
			log := logger.Named("main")

			if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rp, err := buildRepos(ctx, cfg)
			if err != nil {
				return err
			}
			defer rp.close()

			codec, err := jwtx.NewCodec(cfg.JWT.Issuer, []byte(cfg.JWT.SignerKey))
			if err != nil {
				return err
			}

			auth := authsvc.NewService(rp.users, rp.revoked, codec, authsvc.Config{
				ValidDuration:       cfg.ValidDuration(),
				RefreshableDuration: cfg.RefreshableDuration(),
				MagicTTL:            cfg.MagicTTL(),
			})

			counter := stats.New(rp.counts)
			if _, err := counter.EnsureCurrentMonthRecord(ctx, time.Now()); err != nil {
				log.Warn("ensure current month record failed", logger.Err(err))
			}

			var mailer authctrl.MagicLinkSender
			if cfg.SMTP.Host != "" {
				mailer = email.NewSMTPSender(email.SMTPConfig{
					Host:      cfg.SMTP.Host,
					Port:      cfg.SMTP.Port,
					Username:  cfg.SMTP.Username,
					Password:  cfg.SMTP.Password,
					FromEmail: cfg.SMTP.From,
					TLSMode:   cfg.SMTP.TLS,
				})
			} else {
				mailer = email.LogSender{}
			}

			var exchanger authctrl.GoogleExchanger
			if cfg.Google.Enabled {
				exchanger = google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
			}

			var limiter rate.Limiter
			if cfg.Rate.Enabled {
				if rp.redis != nil {
					limiter = rate.NewRedisLimiter(rp.redis.Client(), "baggio:rl:", cfg.Rate.Login.Limit, cfg.LoginRateWindow())
				} else {
					limiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginRateWindow())
				}
			}

			handler := router.New(router.Deps{
				Auth:      authctrl.NewControllers(auth, exchanger, mailer, counter, cfg.Magic.BaseURL),
				Dashboard: adminctrl.NewDashboardController(adminsvc.NewDashboardService(rp.users, rp.counts, counter)),
				Health:    healthctrl.NewController(rp.pinger),
				Verifier:  auth,
				Views:     counter,
				Limiter:   limiter,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("http server starting", logger.String("addr", cfg.Server.Addr))
				return httpserver.Serve(gctx, cfg.Server.Addr, handler)
			})
			g.Go(func() error {
				return stats.NewScheduler(counter, cfg.FlushInterval()).Run(gctx)
			})

			err = g.Wait()
			log.Info("shutdown complete")
			return err
		},
	}
}

func migrateCmd(cfgPath, envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de esquema y sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *envFile)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "baggio-migrate"})
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			store, err := pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{})
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.RunMigrations(ctx, migrations.FS); err != nil {
				return err
			}
			logger.Named("migrate").Info("migrations applied")
			return nil
		},
	}
}

func seedCmd(cfgPath, envFile *string) *cobra.Command {
	var username, mail, pwd, role string
	c := &cobra.Command{
		Use:   "seed",
		Short: "Crea un usuario inicial (activo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath, *envFile)
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "baggio-seed"})
			defer func() { _ = logger.Sync() }()

			if username == "" || mail == "" || pwd == "" {
				return fmt.Errorf("faltan flags: --username, --email y --password son obligatorios")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			store, err := pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{})
			if err != nil {
				return err
			}
			defer store.Close()

			hash, err := password.Hash(password.Default, pwd)
			if err != nil {
				return err
			}
			u := &repository.User{
				Username:     username,
				Email:        mail,
				PasswordHash: hash,
				Role:         role,
				Active:       true,
			}
			if err := store.Users().Create(ctx, u); err != nil {
				return err
			}
			logger.Named("seed").Info("user created",
				logger.UserID(u.ID), logger.Username(u.Username), logger.String("role", u.Role))
			return nil
		},
	}
	c.Flags().StringVar(&username, "username", "", "nombre de usuario")
	c.Flags().StringVar(&mail, "email", "", "email")
	c.Flags().StringVar(&pwd, "password", "", "password en claro (se hashea)")
	c.Flags().StringVar(&role, "role", "ADMIN", "rol del usuario (USER|ADMIN)")
	return c
}
