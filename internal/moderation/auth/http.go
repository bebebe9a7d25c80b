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

// Handler implements the HTTP layer for moderator authentication.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new moderator auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the moderator auth endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/otp/send", handler.sendOtp)
	router.Post("/otp/verify", handler.verifyOtp)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireModerator)
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
POST /api/v1/moderator-auth/otp/send.

Description: Issues a moderator sign-in code after the precondition checks
(existing user, verified email, good standing, active grant).

Request:
  - body: sendOtpRequest

Response:
  - 202: Acceptance message
  - 401: Email not verified / not an active moderator
  - 403: Account banned or deleted
  - 404: No such user
  - 429: Inside the per-email cooldown window
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
		constants.FieldMessage: "A sign-in code is on its way",
	})
}

/*
POST /api/v1/moderator-auth/otp/verify.

Description: Consumes the sign-in code, re-runs the precondition checks,
and establishes a moderator session with the cookie set.

Request:
  - body: verifyOtpRequest

Response:
  - 200: { token, moderator }
  - 400: The generic invalid-code message
  - 401/403/404: Precondition failures (standing may have changed since send)
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
		"moderator":          result.Moderator,
	})
}

/*
GET /api/v1/moderator-auth/me.

Description: Returns the moderator grant behind the presented session.

Response:
  - 200: Moderator
  - 401: ErrUnauthorized / 403: ErrForbidden
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	moderator, err := handler.authService.GetCurrentModerator(request.Context(), requestutil.Principal(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, moderator)
}

/*
POST /api/v1/moderator-auth/logout.

Description: Deletes the presented session and clears the cookie.

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
