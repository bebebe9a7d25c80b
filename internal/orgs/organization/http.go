// Copyright (c) 2026 Handraise. All rights reserved.

package organization

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handraise/handraise/internal/platform/middleware"
	requestutil "github.com/handraise/handraise/internal/platform/request"
	"github.com/handraise/handraise/internal/platform/respond"
	"github.com/handraise/handraise/internal/platform/validate"
	"github.com/handraise/handraise/pkg/pagination"
)

// Handler implements the HTTP layer for organizations.
type Handler struct {
	orgService *Service
}

// NewHandler constructs a new organization [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{orgService: service}
}

// Routes returns a [chi.Router] configured with the organization endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public Discovery
	router.Get("/{slug}", handler.getBySlug)

	// Owner Self-Service
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)
		router.Post("/", handler.register)
		router.Get("/mine", handler.listOwned)
		router.Patch("/{id}", handler.update)
	})

	// Moderation Funnel
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireModerator)
		router.Get("/review", handler.listForReview)
		router.Post("/{id}/approve", handler.approve)
		router.Post("/{id}/reject", handler.reject)
		router.Post("/{id}/blacklist", handler.blacklist)
		router.Post("/{id}/unblacklist", handler.unblacklist)
	})

	return router
}

// # Owner Endpoints

// registerRequest defines the expected JSON payload for registration.
type registerRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Website      string `json:"website"`
	ContactEmail string `json:"contact_email"`
}

/*
POST /api/v1/organizations.

Description: Registers a new organization owned by the authenticated user.
The registration enters the moderation funnel as pending.

Request:
  - body: registerRequest

Response:
  - 201: Organization: The pending organization
  - 400: Validation failure
  - 409: ErrConflict: Name already taken
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).
		MinLen("name", input.Name, 3).
		MaxLen("name", input.Name, 120).
		MaxLen("description", input.Description, 2000).
		MaxLen("website", input.Website, 255)
	if input.ContactEmail != "" {
		v.Email("contact_email", input.ContactEmail)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	org, err := handler.orgService.Register(request.Context(), userID, RegisterInput{
		Name:         input.Name,
		Description:  input.Description,
		Website:      input.Website,
		ContactEmail: input.ContactEmail,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, org)
}

/*
GET /api/v1/organizations/mine.

Description: Lists every organization the authenticated user registered,
including pending and rejected ones.

Response:
  - 200: []Organization
  - 401: ErrUnauthorized
*/
func (handler *Handler) listOwned(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	orgs, err := handler.orgService.ListOwned(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, orgs)
}

// updateRequest defines the expected JSON payload for owner edits.
type updateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Website      *string `json:"website"`
	ContactEmail *string `json:"contact_email"`
}

/*
PATCH /api/v1/organizations/{id}.

Description: Applies partial owner edits to an organization's profile.

Request:
  - body: updateRequest (Partial JSON)

Response:
  - 200: Organization: The updated organization
  - 403: ErrForbidden: Caller is not the owner
  - 404: ErrNotFound: Unknown organization
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
	if input.Name != nil {
		v.MinLen("name", *input.Name, 3).MaxLen("name", *input.Name, 120)
	}
	if input.Description != nil {
		v.MaxLen("description", *input.Description, 2000)
	}
	if input.Website != nil {
		v.MaxLen("website", *input.Website, 255)
	}
	if input.ContactEmail != nil && *input.ContactEmail != "" {
		v.Email("contact_email", *input.ContactEmail)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	org, err := handler.orgService.Update(request.Context(), userID, requestutil.ID(request, "id"), UpdateInput{
		Name:         input.Name,
		Description:  input.Description,
		Website:      input.Website,
		ContactEmail: input.ContactEmail,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, org)
}

// # Public Endpoints

/*
GET /api/v1/organizations/{slug}.

Description: Retrieves a publicly visible (approved, non-blacklisted)
organization by slug.

Response:
  - 200: Organization
  - 404: ErrNotFound: Absent, pending, rejected, or blacklisted
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	org, err := handler.orgService.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, org)
}

// # Moderation Endpoints

/*
GET /api/v1/organizations/review.

Description: Lists organizations for moderator review, optionally filtered
by the "status" query parameter.

Response:
  - 200: []Organization with pagination metadata
  - 400: Validation failure on an unknown status value
*/
func (handler *Handler) listForReview(writer http.ResponseWriter, request *http.Request) {
	status := ApprovalStatus(request.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respond.Error(writer, request, validate.RequiredError("status", "Must be one of: pending, approved, rejected"))
		return
	}

	params := pagination.FromRequest(request)
	orgs, total, err := handler.orgService.ListForReview(request.Context(), status, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, orgs, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/organizations/{id}/approve.
*/
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	if err := handler.orgService.Approve(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /api/v1/organizations/{id}/reject.
*/
func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	if err := handler.orgService.Reject(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /api/v1/organizations/{id}/blacklist.

Description: Blacklists the organization and blocks its owner's future
logins. Live owner sessions die lazily through the auth-time gate.
*/
func (handler *Handler) blacklist(writer http.ResponseWriter, request *http.Request) {
	if err := handler.orgService.Blacklist(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /api/v1/organizations/{id}/unblacklist.
*/
func (handler *Handler) unblacklist(writer http.ResponseWriter, request *http.Request) {
	if err := handler.orgService.Unblacklist(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
