// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Standup HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when REDIS_URL is set.
//  5. Run database migrations (idempotent).
//  6. Build the security services (hasher, token service, gate).
//  7. Seed the administrator account.
//  8. Wire HTTP handlers.
//  9. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/standup/internal/api"
	"github.com/taibuivan/standup/internal/auth"
	"github.com/taibuivan/standup/internal/platform/config"
	"github.com/taibuivan/standup/internal/platform/constants"
	"github.com/taibuivan/standup/internal/platform/ctxutil"
	"github.com/taibuivan/standup/internal/platform/migration"
	pgstore "github.com/taibuivan/standup/internal/platform/postgres"
	redisstore "github.com/taibuivan/standup/internal/platform/redis"
	"github.com/taibuivan/standup/internal/platform/sec"
	"github.com/taibuivan/standup/internal/standups"
	"github.com/taibuivan/standup/internal/users"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

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
		slog.Bool("identity_cache", cfg.HasRedis()),
	)

	// Root context for startup. The deadline catches misconfiguration quickly
	// rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(ctxutil.WithLogger(context.Background(), log), constants.StartupTimeout)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DSN(), log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	userRepository := users.NewPostgresRepository(pool)

	healthDeps := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}

	// ── 4. Redis (optional identity cache) ────────────────────────────────
	var (
		identities    sec.IdentityFinder = userRepository
		identityCache users.IdentityCache
	)

	if cfg.HasRedis() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		cached := users.NewCachedIdentityFinder(userRepository, rdb, cfg.IdentityCacheTTL)
		identities = cached
		identityCache = cached
		healthDeps.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DSN(), cfg.MigrationPath, log, cfg.Debug), "run migrations")

	// ── 6. Security Services ──────────────────────────────────────────────
	clock := func() time.Time { return time.Now().UTC() }

	hasher := sec.NewPasswordHasher(cfg.BcryptCost)
	tokens, err := sec.NewTokenService(cfg.SecretKey, cfg.Algorithm, cfg.TokenTTL())
	must(log, err, "initialize token service")
	gate := sec.NewGate(tokens, identities)

	// ── 7. Admin Seed ─────────────────────────────────────────────────────
	userService := users.NewService(userRepository, hasher, identityCache)
	_, err = userService.EnsureAdmin(startupCtx, cfg.AdminUser, cfg.AdminPassword)
	must(log, err, "seed admin user")

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)
	authService, err := auth.NewService(userRepository, hasher, tokens, clock)
	must(log, err, "initialize auth service")

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Users:     users.NewHandler(userService),
		Standups:  standups.NewHandler(standups.NewService(standups.NewPostgresRepository(pool), clock)),
	}

	server := api.NewServer(cfg, log, gate, clock, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_listen_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the root JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
