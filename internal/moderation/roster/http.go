// Copyright (c) 2026 Handraise. All rights reserved.

package roster

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/handraise/handraise/internal/platform/middleware"
	requestutil "github.com/handraise/handraise/internal/platform/request"
	"github.com/handraise/handraise/internal/platform/respond"
	"github.com/handraise/handraise/internal/platform/validate"
	"github.com/handraise/handraise/pkg/pagination"
)

// Handler implements the HTTP layer for the moderator roster.
//
// Every endpoint here requires an active moderator session.
type Handler struct {
	rosterService *Service
}

// NewHandler constructs a new roster [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{rosterService: service}
}

// Routes returns a [chi.Router] configured with the roster endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireModerator)

	router.Get("/", handler.listModerators)
	router.Post("/", handler.createModerator)
	router.Post("/{id}/deactivate", handler.deactivateModerator)
	router.Post("/{id}/reactivate", handler.reactivateModerator)

	return router
}

/*
GET /api/v1/moderators.

Description: Lists moderator grants with the underlying user details.

Response:
  - 200: []Moderator with pagination metadata
  - 401: ErrUnauthorized / 403: ErrForbidden
*/
func (handler *Handler) listModerators(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	moderators, total, err := handler.rosterService.ListModerators(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, moderators, pagination.NewMeta(params.Page, params.Limit, total))
}

// createModeratorRequest defines the expected JSON payload for grants.
type createModeratorRequest struct {
	Email string `json:"email"`
}

/*
POST /api/v1/moderators.

Description: Grants moderation privileges to an existing verified user.

Request:
  - body: createModeratorRequest

Response:
  - 201: Moderator: The new grant
  - 400: Validation failure
  - 404: ErrNotFound: No such user
  - 409: ErrConflict: User is already a moderator
*/
func (handler *Handler) createModerator(writer http.ResponseWriter, request *http.Request) {
	var input createModeratorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	moderator, err := handler.rosterService.CreateModerator(request.Context(), email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, moderator)
}

/*
POST /api/v1/moderators/{id}/deactivate.

Description: Suspends a grant and revokes the moderator's live sessions.

Response:
  - 204: No Content
  - 404: ErrNotFound: Unknown moderator
*/
func (handler *Handler) deactivateModerator(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rosterService.DeactivateModerator(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/moderators/{id}/reactivate.

Description: Restores a suspended grant.

Response:
  - 204: No Content
  - 404: ErrNotFound: Unknown moderator
*/
func (handler *Handler) reactivateModerator(writer http.ResponseWriter, request *http.Request) {
	if err := handler.rosterService.ReactivateModerator(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
