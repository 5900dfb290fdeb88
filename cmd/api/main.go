// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Yomira identity API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build the mailer, avatar storage and social providers.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-id/data"
	"github.com/taibuivan/yomira-id/internal/api"
	"github.com/taibuivan/yomira-id/internal/platform/config"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/platform/mailer"
	"github.com/taibuivan/yomira-id/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-id/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-id/internal/platform/redis"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
	"github.com/taibuivan/yomira-id/internal/platform/storage"
	"github.com/taibuivan/yomira-id/internal/users/account"
	"github.com/taibuivan/yomira-id/internal/users/auth"
	"github.com/taibuivan/yomira-id/internal/users/social"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("mail_driver", cfg.MailDriver),
	)

	// Root context for startup. A deadline surfaces misconfiguration quickly.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, pgstore.Options{
		DSN:              cfg.DatabaseURL,
		MaxConns:         cfg.DBMaxConns,
		MinConns:         cfg.DBMinConns,
		StatementTimeout: cfg.DBStatementTimeout,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, redisstore.Options{
		URL:      cfg.RedisURL,
		PoolSize: cfg.RedisPoolSize,
	}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	migrations := migration.Source{FS: data.Migrations, Dir: "migrations", Path: cfg.MigrationPath}
	must(log, migration.RunUp(cfg.DatabaseURL, migrations, log), "run migrations")

	// ── 5. Infrastructure ─────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	mail, err := mailer.New(newMailSender(cfg, log), constants.AppName)
	must(log, err, "initialize mailer")

	var avatars account.AvatarStore
	if cfg.StorageEnabled() {
		store, err := storage.NewAvatarStore(startupCtx, storage.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: cfg.S3PublicURL,
		})
		must(log, err, "initialize avatar storage")
		avatars = store
	} else {
		log.Warn("avatar_storage_disabled")
	}

	providers, err := newSocialProviders(startupCtx, cfg)
	must(log, err, "initialize social providers")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)

	authService := auth.NewService(auth.Dependencies{
		Users:             userRepository,
		Sessions:          auth.NewSessionRepository(pool),
		Identities:        auth.NewIdentityRepository(pool),
		SessionCache:      auth.NewSessionCache(rdb),
		ResetTokens:       auth.NewResetTokenRepository(rdb),
		VerifyTokens:      auth.NewVerificationTokenRepository(rdb),
		EmailChangeTokens: auth.NewEmailChangeTokenRepository(rdb),
		Tokens:            jwtSvc,
		Mailer:            mail,
		Links:             auth.Links{PublicURL: cfg.PublicURL, APIURL: cfg.APIPublicURL},
	})

	cookies := auth.CookieConfig{Secure: cfg.IsProduction(), Domain: cfg.CookieDomain}
	registry := social.NewRegistry(providers...)
	log.Info("social_providers_registered", slog.Any("providers", registry.Names()))

	accountService := account.NewService(userRepository, authService, avatars, log)

	liveness, readiness := api.NewHealthHandlers(
		api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	go purgeExpiredSessions(serverCtx, authService, log)

	server := api.NewServer(serverCtx, api.Options{
		Port:     cfg.ServerPort,
		CORS:     cfg,
		Verifier: jwtSvc,
		Sessions: authService,
	}, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cookies, cfg.PublicURL),
		Social:    social.NewHandler(registry, authService, cookies, cfg.PublicURL),
		Account:   account.NewHandler(accountService),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	serverCancel()

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newMailSender picks the delivery backend named by MAIL_DRIVER.
func newMailSender(cfg *config.Config, log *slog.Logger) mailer.Sender {
	if cfg.MailDriver == "smtp" {
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}
	return mailer.NewLogSender(log)
}

// newSocialProviders registers every provider that has credentials.
func newSocialProviders(ctx context.Context, cfg *config.Config) ([]social.Provider, error) {
	var providers []social.Provider

	if cfg.GoogleClientID != "" {
		google, err := social.NewGoogle(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, social.CallbackURL(cfg.APIPublicURL, "google"))
		if err != nil {
			return nil, err
		}
		providers = append(providers, google)
	}

	if cfg.GitHubClientID != "" {
		github, err := social.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, social.CallbackURL(cfg.APIPublicURL, "github"))
		if err != nil {
			return nil, err
		}
		providers = append(providers, github)
	}

	return providers, nil
}

// purgeExpiredSessions deletes expired session rows until ctx is cancelled.
func purgeExpiredSessions(ctx context.Context, service *auth.Service, log *slog.Logger) {
	ticker := time.NewTicker(constants.SessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := service.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Error("session_purge_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				log.Info("session_purge_completed", slog.Int64("removed", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
