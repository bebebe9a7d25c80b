// Copyright (c) 2026 Handraise. All rights reserved.

package auth_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handraise/handraise/internal/platform/ctxutil"
	"github.com/handraise/handraise/internal/users/auth"
)

/*
TestHandler_Logout_StorageFailureIsLogged verifies that a session-store
failure during logout is logged instead of swallowed, while the client still
gets a clean sign-out: 200, confirmation message, and an expired cookie.
*/
func TestHandler_Logout_StorageFailureIsLogged(t *testing.T) {
	env := newTestEnv()
	env.sessions.logoutErr = assert.AnError
	handler := auth.NewHandler(env.service)

	var logOutput bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logOutput, nil))

	request := httptest.NewRequest(http.MethodPost, "/logout", nil)
	request.Header.Set("Authorization", "Bearer stale-token")
	request = request.WithContext(ctxutil.WithLogger(request.Context(), logger))
	recorder := httptest.NewRecorder()

	handler.Routes().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Signed out")
	assert.Equal(t, []string{"stale-token"}, env.sessions.loggedOut)
	assert.Contains(t, logOutput.String(), "logout_session_delete_failed")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sessionToken", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

/*
TestHandler_Logout verifies the quiet path: the presented token is deleted
and nothing is logged.
*/
func TestHandler_Logout(t *testing.T) {
	env := newTestEnv()
	handler := auth.NewHandler(env.service)

	var logOutput bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logOutput, nil))

	request := httptest.NewRequest(http.MethodPost, "/logout", nil)
	request.Header.Set("Authorization", "Bearer live-token")
	request = request.WithContext(ctxutil.WithLogger(request.Context(), logger))
	recorder := httptest.NewRecorder()

	handler.Routes().ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []string{"live-token"}, env.sessions.loggedOut)
	assert.NotContains(t, logOutput.String(), "logout_session_delete_failed")
}
