// Copyright (c) 2026 Handraise. All rights reserved.

// Command api is the entry point for the Handraise HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the secrets provider chain (mounted dir, then env).
//  4. Connect to PostgreSQL (pgxpool).
//  5. Connect to Redis.
//  6. Run database migrations (idempotent).
//  7. Wire domain services, the session manager, and the outbox dispatcher.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/handraise/handraise/internal/api"
	"github.com/handraise/handraise/internal/auth/otp"
	"github.com/handraise/handraise/internal/auth/session"
	"github.com/handraise/handraise/internal/core/opportunity"
	"github.com/handraise/handraise/internal/core/participation"
	moderatorauth "github.com/handraise/handraise/internal/moderation/auth"
	"github.com/handraise/handraise/internal/moderation/roster"
	"github.com/handraise/handraise/internal/notify"
	"github.com/handraise/handraise/internal/orgs/organization"
	"github.com/handraise/handraise/internal/platform/config"
	"github.com/handraise/handraise/internal/platform/constants"
	"github.com/handraise/handraise/internal/platform/migration"
	pgstore "github.com/handraise/handraise/internal/platform/postgres"
	redisstore "github.com/handraise/handraise/internal/platform/redis"
	"github.com/handraise/handraise/internal/platform/sec"
	"github.com/handraise/handraise/internal/platform/secrets"
	"github.com/handraise/handraise/internal/users/account"
	userauth "github.com/handraise/handraise/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Handraise] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Secrets ────────────────────────────────────────────────────────
	// Mounted secret files win over environment variables when both exist.
	var secretProvider secrets.Provider = secrets.NewEnv()
	if cfg.SecretsDir != "" {
		secretProvider = secrets.NewChain(secrets.NewDir(cfg.SecretsDir), secrets.NewEnv())
	}

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Mail & Outbox ──────────────────────────────────────────────────
	var mailer notify.Mailer = notify.NewLogMailer(log)
	if cfg.SMTPHost != "" {
		// A missing password is fine for unauthenticated relays.
		smtpPassword := <-secrets.Lookup(startupCtx, secretProvider, "SMTP_PASSWORD")
		if smtpPassword.Err != nil && !errors.Is(smtpPassword.Err, secrets.ErrNotFound) {
			must(log, smtpPassword.Err, "resolve smtp password")
		}
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, smtpPassword.Value, cfg.SMTPFrom)
	}

	outboxStore := notify.NewPostgresOutboxStore(pool)
	notifyService := notify.NewService(outboxStore)

	// ── 9. Auth Core ──────────────────────────────────────────────────────
	otpStore := otp.NewPostgresStore(pool)
	otpCooldown := otp.NewRedisCooldownStore(rdb)
	otpService := otp.NewService(otpStore, otpCooldown)

	sessionStore := session.NewPostgresStore(pool)
	sessionManager := session.NewManager(sessionStore, log)

	// The dispatcher's cleanup phase doubles as the reaper for expired OTP
	// codes and sessions.
	dispatcher := notify.NewDispatcher(outboxStore, mailer, log,
		func(ctx context.Context) error {
			return otpStore.DeleteExpired(ctx, time.Now().Add(-otp.CodeTTL))
		},
		sessionStore.DeleteExpired,
	)

	// ── 10. Domain Wiring ─────────────────────────────────────────────────
	accountRepository := account.NewPostgresRepository(pool)
	rosterStore := roster.NewPostgresStore(pool)
	orgStore := organization.NewPostgresStore(pool)
	oppStore := opportunity.NewPostgresStore(pool)
	participationStore := participation.NewPostgresStore(pool)

	orgService := organization.NewService(orgStore, log)

	rosterService := roster.NewService(rosterStore, accountRepository, sessionManager, log)
	accountService := account.NewService(accountRepository, sessionManager, rosterService, log)

	userAuthService := userauth.NewService(otpService, accountRepository, sessionManager, orgService, notifyService, log)
	moderatorAuthService := moderatorauth.NewService(otpService, accountRepository, rosterStore, sessionManager, notifyService, log)

	// Both subject kinds funnel into the same session store lookup; the
	// resolvers supply the per-kind standing checks.
	sessionManager.Register(sec.SubjectUser, userAuthService)
	sessionManager.Register(sec.SubjectModerator, moderatorAuthService)

	oppService := opportunity.NewService(oppStore, orgStore, log)
	participationService := participation.NewService(participationStore, oppStore, orgStore, log)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:      liveness,
		Readiness:     readiness,
		UserAuth:      userauth.NewHandler(userAuthService),
		ModeratorAuth: moderatorauth.NewHandler(moderatorAuthService),
		Account:       account.NewHandler(accountService),
		Roster:        roster.NewHandler(rosterService),
		Organization:  organization.NewHandler(orgService),
		Opportunity:   opportunity.NewHandler(oppService),
		Participation: participation.NewHandler(participationService),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	server := api.NewServer(runCtx, cfg, log, sessionManager, handlers)

	// The outbox dispatcher drains queued mail until shutdown.
	go dispatcher.Run(runCtx)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
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
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Stop the dispatcher and rate-limiter cleanup alongside the server.
	runCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
