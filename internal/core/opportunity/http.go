// Copyright (c) 2026 Handraise. All rights reserved.

package opportunity

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/handraise/handraise/internal/platform/middleware"
	requestutil "github.com/handraise/handraise/internal/platform/request"
	"github.com/handraise/handraise/internal/platform/respond"
	"github.com/handraise/handraise/internal/platform/validate"
	"github.com/handraise/handraise/pkg/pagination"
)

// Handler implements the HTTP layer for opportunities.
type Handler struct {
	oppService *Service
}

// NewHandler constructs a new opportunity [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{oppService: service}
}

// Routes returns a [chi.Router] configured with the opportunity endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public Discovery
	router.Get("/", handler.listPublic)
	router.Get("/{slug}", handler.getBySlug)

	// Owner Management
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)
		router.Post("/", handler.create)
		router.Get("/organization/{orgID}", handler.listForOrganization)
		router.Patch("/{id}", handler.update)
		router.Post("/{id}/publish", handler.publish)
		router.Post("/{id}/close", handler.close)
	})

	return router
}

// # Public Endpoints

/*
GET /api/v1/opportunities.

Description: Lists published opportunities, newest first. Supports
"location" (substring match) and "remote" (true/false) query filters.

Response:
  - 200: []Opportunity with pagination metadata
*/
func (handler *Handler) listPublic(writer http.ResponseWriter, request *http.Request) {
	filter := ListFilter{
		Location: request.URL.Query().Get("location"),
	}

	switch request.URL.Query().Get("remote") {
	case "true":
		remote := true
		filter.Remote = &remote
	case "false":
		remote := false
		filter.Remote = &remote
	}

	params := pagination.FromRequest(request)
	opportunities, total, err := handler.oppService.ListPublic(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, opportunities, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/opportunities/{slug}.

Description: Retrieves a published or closed opportunity by slug.

Response:
  - 200: Opportunity
  - 404: ErrNotFound: Absent or draft
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	opp, err := handler.oppService.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, opp)
}

// # Owner Endpoints

// createRequest defines the expected JSON payload for drafting.
type createRequest struct {
	OrganizationID string     `json:"organization_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	Remote         bool       `json:"remote"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
	Capacity       int        `json:"capacity"`
}

/*
POST /api/v1/opportunities.

Description: Drafts a new opportunity for an approved organization owned by
the caller.

Request:
  - body: createRequest

Response:
  - 201: Opportunity: The new draft
  - 400: Validation failure
  - 403: ErrForbidden: Not the owner, or organization not approved
  - 409: ErrConflict: Title already taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("organization_id", input.OrganizationID).
		UUID("organization_id", input.OrganizationID).
		Required("title", input.Title).
		MinLen("title", input.Title, 3).
		MaxLen("title", input.Title, 160).
		MaxLen("description", input.Description, 5000).
		MaxLen("location", input.Location, 160).
		Custom("capacity", input.Capacity < 0, "Must not be negative").
		Custom("location", !input.Remote && input.Location == "", "Required for on-site opportunities")
	if input.StartsAt != nil && input.EndsAt != nil {
		v.Custom("ends_at", input.EndsAt.Before(*input.StartsAt), "Must be after starts_at")
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	opp, err := handler.oppService.Create(request.Context(), userID, CreateInput{
		OrganizationID: input.OrganizationID,
		Title:          input.Title,
		Description:    input.Description,
		Location:       input.Location,
		Remote:         input.Remote,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		Capacity:       input.Capacity,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, opp)
}

// updateRequest defines the expected JSON payload for edits.
type updateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Remote      *bool      `json:"remote"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity"`
}

/*
PATCH /api/v1/opportunities/{id}.

Description: Applies partial owner edits to an opportunity.

Response:
  - 200: Opportunity: The updated opportunity
  - 403: ErrForbidden / 404: ErrNotFound
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Title != nil {
		v.MinLen("title", *input.Title, 3).MaxLen("title", *input.Title, 160)
	}
	if input.Description != nil {
		v.MaxLen("description", *input.Description, 5000)
	}
	if input.Location != nil {
		v.MaxLen("location", *input.Location, 160)
	}
	if input.Capacity != nil {
		v.Custom("capacity", *input.Capacity < 0, "Must not be negative")
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	opp, err := handler.oppService.Update(request.Context(), userID, requestutil.ID(request, "id"), UpdateInput{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Remote:      input.Remote,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Capacity:    input.Capacity,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, opp)
}

/*
POST /api/v1/opportunities/{id}/publish.
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.oppService.Publish(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/opportunities/{id}/close.
*/
func (handler *Handler) close(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.oppService.Close(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/opportunities/organization/{orgID}.

Description: Lists every opportunity of an owned organization, drafts
included.

Response:
  - 200: []Opportunity
  - 403: ErrForbidden / 404: ErrNotFound
*/
func (handler *Handler) listForOrganization(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	opportunities, err := handler.oppService.ListForOrganization(request.Context(), userID, requestutil.ID(request, "orgID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, opportunities)
}
