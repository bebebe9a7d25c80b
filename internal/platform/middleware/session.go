// Copyright (c) 2026 Handraise. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/constants"
	"github.com/handraise/handraise/internal/platform/ctxutil"
	"github.com/handraise/handraise/internal/platform/respond"
	"github.com/handraise/handraise/internal/platform/sec"
)

// SessionVerifier resolves an opaque session token to a live subject.
//
// # Why an interface?
//
// Defining SessionVerifier here decouples the middleware from the session
// manager implementation, allowing us to easily inject fakes during unit
// testing.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*sec.Principal, error)
}

// ExtractCredential pulls the session token from an incoming request.
//
// # Priority Order
//
// Two transport modes are supported simultaneously: a first-party httpOnly
// cookie set by the server-side proxy layer, and header-based tokens for
// clients that cannot rely on cookies across origins. Resolution happens
// exactly once, in a fixed order:
//
//  1. 'sessionToken' cookie.
//  2. 'Authorization: Bearer <token>' header.
//  3. 'x-auth-id' custom header (proxy-forwarded credential).
//
// An empty string means the request is anonymous.
func ExtractCredential(request *http.Request) string {

	// 1. First-party cookie
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// 2. Bearer header
	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return strings.TrimSpace(parts[1])
		}
	}

	// 3. Proxy-forwarded custom header
	if token := request.Header.Get(constants.HeaderAuthID); token != "" {
		return token
	}

	return ""
}

// Authenticate resolves the session credential on every request.
//
// # Flow
//  1. Extract the token via [ExtractCredential].
//  2. If absent, the request proceeds as anonymous.
//  3. If present, resolve it through the [SessionVerifier]; this enforces
//     expiry and lazy revocation (banned/deleted user, deactivated moderator).
//  4. Inject the resolved [*sec.Principal] into the request context.
//
// A present-but-invalid credential fails the request immediately with 401
// rather than downgrading to anonymous, so clients learn their session died.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := ExtractCredential(request)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Session Resolution ─────────────────────────────────────────
			principal, err := verifier.VerifySession(request.Context(), token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired session"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireModerator blocks requests that do not carry a moderator session.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth], so the two never need to be mounted together.
func RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())

		// ── 1. Authentication Check ───────────────────────────────────────
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Subject Kind Check ─────────────────────────────────────────
		if !principal.IsModerator() {
			respond.Error(writer, request, apperr.Forbidden("Moderator access required"))
			return
		}

		next.ServeHTTP(writer, request)
	})
}
