// Copyright (c) 2026 Handraise. All rights reserved.

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/platform/apperr"
	"github.com/handraise/handraise/internal/platform/constants"
	"github.com/handraise/handraise/internal/platform/ctxutil"
	"github.com/handraise/handraise/internal/platform/middleware"
	"github.com/handraise/handraise/internal/platform/sec"
)

// fakeVerifier accepts exactly one token.
type fakeVerifier struct {
	valid     string
	principal *sec.Principal
}

func (verifier *fakeVerifier) VerifySession(_ context.Context, token string) (*sec.Principal, error) {
	if token == verifier.valid {
		return verifier.principal, nil
	}
	return nil, apperr.Unauthorized("Invalid or expired session")
}

/*
TestExtractCredential checks the fixed credential resolution order:
cookie, then bearer header, then the proxy header.
*/
func TestExtractCredential(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(request *http.Request)
		want    string
	}{
		{
			"anonymous",
			func(*http.Request) {},
			"",
		},
		{
			"cookie_only",
			func(request *http.Request) {
				request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "cookie-token"})
			},
			"cookie-token",
		},
		{
			"bearer_only",
			func(request *http.Request) {
				request.Header.Set("Authorization", "Bearer bearer-token")
			},
			"bearer-token",
		},
		{
			"bearer_case_insensitive",
			func(request *http.Request) {
				request.Header.Set("Authorization", "bearer bearer-token")
			},
			"bearer-token",
		},
		{
			"auth_id_only",
			func(request *http.Request) {
				request.Header.Set(constants.HeaderAuthID, "header-token")
			},
			"header-token",
		},
		{
			"cookie_beats_bearer",
			func(request *http.Request) {
				request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "cookie-token"})
				request.Header.Set("Authorization", "Bearer bearer-token")
			},
			"cookie-token",
		},
		{
			"bearer_beats_auth_id",
			func(request *http.Request) {
				request.Header.Set("Authorization", "Bearer bearer-token")
				request.Header.Set(constants.HeaderAuthID, "header-token")
			},
			"bearer-token",
		},
		{
			"malformed_bearer_falls_through",
			func(request *http.Request) {
				request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
				request.Header.Set(constants.HeaderAuthID, "header-token")
			},
			"header-token",
		},
		{
			"empty_cookie_falls_through",
			func(request *http.Request) {
				request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: ""})
				request.Header.Set(constants.HeaderAuthID, "header-token")
			},
			"header-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(request)
			assert.Equal(t, tt.want, middleware.ExtractCredential(request))
		})
	}
}

/*
TestAuthenticate checks anonymous pass-through, principal injection, and the
hard 401 on a present-but-invalid credential.
*/
func TestAuthenticate(t *testing.T) {
	verifier := &fakeVerifier{
		valid:     "good-token",
		principal: &sec.Principal{Kind: sec.SubjectUser, UserID: "user-1"},
	}

	var seen *sec.Principal
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.Authenticate(verifier)(next)

	t.Run("anonymous_passes_through", func(t *testing.T) {
		seen = nil
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid_token_injects_principal", func(t *testing.T) {
		seen = nil
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good-token")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "user-1", seen.UserID)
	})

	t.Run("invalid_token_is_401_not_anonymous", func(t *testing.T) {
		seen = nil
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer dead-token")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Nil(t, seen)
	})
}

/*
TestRequireAuth checks the authenticated-only gate.
*/
func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequireAuth(next)

	t.Run("anonymous_rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("authenticated_passes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{Kind: sec.SubjectUser, UserID: "user-1"})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

/*
TestRequireModerator checks that the moderator gate distinguishes anonymous
(401) from authenticated-but-not-moderator (403).
*/
func TestRequireModerator(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequireModerator(next)

	t.Run("anonymous_rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("user_session_forbidden", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{Kind: sec.SubjectUser, UserID: "user-1"})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("moderator_session_passes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{
			Kind:        sec.SubjectModerator,
			UserID:      "user-1",
			ModeratorID: "mod-1",
		})

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
