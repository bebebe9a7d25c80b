// Copyright (c) 2026 Handraise. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/handraise/handraise/internal/core/opportunity"
	"github.com/handraise/handraise/internal/core/participation"
	moderatorauth "github.com/handraise/handraise/internal/moderation/auth"
	"github.com/handraise/handraise/internal/moderation/roster"
	"github.com/handraise/handraise/internal/orgs/organization"
	"github.com/handraise/handraise/internal/platform/config"
	"github.com/handraise/handraise/internal/platform/constants"
	"github.com/handraise/handraise/internal/platform/middleware"
	"github.com/handraise/handraise/internal/users/account"
	userauth "github.com/handraise/handraise/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// UserAuth handles end-user OTP sign-in and session endpoints.
	UserAuth *userauth.Handler

	// ModeratorAuth handles the moderator OTP sign-in variant.
	ModeratorAuth *moderatorauth.Handler

	// Account handles user profiles and moderator account actions.
	Account *account.Handler

	// Roster handles the moderator roster.
	Roster *roster.Handler

	// Organization handles registration, the approval funnel, and the blacklist.
	Organization *organization.Handler

	// Opportunity handles the opportunity lifecycle and public listing.
	Opportunity *opportunity.Handler

	// Participation handles volunteer applications and owner decisions.
	Participation *participation.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.SessionVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.UserAuth.Routes())
		api.Mount("/moderator-auth", h.ModeratorAuth.Routes())
		api.Mount("/users", h.Account.Routes())
		api.Mount("/moderators", h.Roster.Routes())
		api.Mount("/organizations", h.Organization.Routes())
		api.Mount("/opportunities", h.Opportunity.Routes())
		api.Mount("/participations", h.Participation.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
