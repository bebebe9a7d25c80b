// Copyright (c) 2026 Handraise. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handraise/handraise/internal/platform/middleware"
	requestutil "github.com/handraise/handraise/internal/platform/request"
	"github.com/handraise/handraise/internal/platform/respond"
	"github.com/handraise/handraise/internal/platform/validate"
	"github.com/handraise/handraise/pkg/pagination"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Profile Self-Service
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)
		router.Get("/me", handler.getMe)
		router.Patch("/me", handler.updateMe)
	})

	// Moderation Console
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireModerator)
		router.Get("/", handler.listUsers)
		router.Post("/{id}/ban", handler.banUser)
		router.Post("/{id}/unban", handler.unbanUser)
		router.Delete("/{id}", handler.deleteUser)
	})

	return router
}

// # Profile Endpoints

/*
GET /api/v1/users/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: User: Fully hydrated user profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

/*
PATCH /api/v1/users/me.

Description: Applies partial updates to the authenticated user's profile.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.DisplayName != nil {
		v.MinLen("display_name", *input.DisplayName, 2).MaxLen("display_name", *input.DisplayName, 50)
	}
	if input.Bio != nil {
		v.MaxLen("bio", *input.Bio, 500)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		DisplayName: input.DisplayName,
		Bio:         input.Bio,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Moderation Endpoints

/*
GET /api/v1/users.

Description: Lists accounts for moderator review, newest first. Includes
banned and soft-deleted records.

Response:
  - 200: []User with pagination metadata
  - 401: ErrUnauthorized / 403: ErrForbidden
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/users/{id}/ban.

Description: Bans an account and revokes all of its live sessions.

Response:
  - 204: No Content
  - 404: ErrNotFound: Unknown user
*/
func (handler *Handler) banUser(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.BanUser(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/users/{id}/unban.

Description: Lifts an account ban.

Response:
  - 204: No Content
  - 404: ErrNotFound: Unknown user
*/
func (handler *Handler) unbanUser(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.UnbanUser(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/users/{id}.

Description: Soft-deletes an account and revokes all of its live sessions.

Response:
  - 204: No Content
  - 404: ErrNotFound: Unknown user
*/
func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.DeleteUser(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
