// Copyright (c) 2026 Handraise. All rights reserved.

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handraise/handraise/internal/platform/constants"
	"github.com/handraise/handraise/internal/platform/ctxutil"
	"github.com/handraise/handraise/internal/platform/middleware"
	requestutil "github.com/handraise/handraise/internal/platform/request"
	"github.com/handraise/handraise/internal/platform/respond"
	"github.com/handraise/handraise/internal/platform/sec"
	"github.com/handraise/handraise/internal/platform/validate"
)

// Handler implements the HTTP layer for end-user authentication.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the auth endpoints.
//
// # Endpoints
//   - POST /otp/send   : Issues a sign-in code (always generic success).
//   - POST /otp/verify : Consumes the code and establishes a session.
//   - GET  /me         : Returns the authenticated account.
//   - POST /logout     : Deletes the presented session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/otp/send", handler.sendOtp)
	router.Post("/otp/verify", handler.verifyOtp)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.getMe)
	})

	return router
}

// # Request Payloads

type sendOtpRequest struct {
	Email string `json:"email"`
}

type verifyOtpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// # Endpoints

/*
POST /api/v1/auth/otp/send.

Description: Issues a sign-in code and queues its email delivery. The code
itself never appears in the response.

Request:
  - body: sendOtpRequest

Response:
  - 202: Generic acceptance message
  - 403: ErrForbidden: Account banned or deleted
  - 429: ErrRateLimited: Inside the per-email cooldown window
*/
func (handler *Handler) sendOtp(writer http.ResponseWriter, request *http.Request) {
	var input sendOtpRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("email", input.Email).Email("email", input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.SendOtp(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, map[string]string{
		constants.FieldMessage: "If the address is valid, a sign-in code is on its way",
	})
}

/*
POST /api/v1/auth/otp/verify.

Description: Consumes the sign-in code, establishes a 30-day session, and
sets the session cookie. The raw token is also returned in the body for
header-based clients.

Request:
  - body: verifyOtpRequest

Response:
  - 200: { token, user }
  - 400: The generic invalid-code message (absent, expired, or wrong code)
  - 403: ErrForbidden: Account banned/deleted or blacklisted-organization owner
*/
func (handler *Handler) verifyOtp(writer http.ResponseWriter, request *http.Request) {
	var input verifyOtpRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("email", input.Email).Email("email", input.Email)
	validator.Required("code", input.Code).
		ExactLen("code", input.Code, sec.OtpCodeLength).
		Numeric("code", input.Code)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.VerifyOtp(request.Context(), input.Email, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    result.Token,
		Path:     constants.SessionCookiePath,
		Expires:  result.ExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respond.OK(writer, map[string]any{
		constants.FieldToken: result.Token,
		"user":               result.User,
	})
}

/*
GET /api/v1/auth/me.

Description: Returns the account behind the presented session.

Response:
  - 200: User
  - 401: ErrUnauthorized
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.authService.GetCurrentUser(request.Context(), requestutil.Principal(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
POST /api/v1/auth/logout.

Description: Deletes the presented session (cookie or header transport) and
clears the session cookie. Idempotent — an anonymous call still succeeds.

Response:
  - 200: Confirmation message
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if token := middleware.ExtractCredential(request); token != "" {
		// Best effort: the cookie is cleared either way, but a surviving
		// session row is worth an operator's attention.
		if err := handler.authService.Logout(request.Context(), token); err != nil {
			ctxutil.GetLogger(request.Context()).Warn("logout_session_delete_failed",
				slog.Any("error", err),
			)
		}
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "Signed out",
	})
}
