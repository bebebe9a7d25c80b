// Copyright (c) 2026 Handraise. All rights reserved.

package participation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handraise/handraise/internal/platform/middleware"
	requestutil "github.com/handraise/handraise/internal/platform/request"
	"github.com/handraise/handraise/internal/platform/respond"
	"github.com/handraise/handraise/internal/platform/validate"
)

// Handler implements the HTTP layer for participations.
//
// Every endpoint requires authentication; ownership checks happen in the
// service layer.
type Handler struct {
	participationService *Service
}

// NewHandler constructs a new participation [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{participationService: service}
}

// Routes returns a [chi.Router] configured with the participation endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	// Volunteer Side
	router.Post("/", handler.apply)
	router.Get("/mine", handler.listMine)
	router.Post("/{id}/withdraw", handler.withdraw)

	// Owner Side
	router.Get("/opportunity/{oppID}", handler.listForOpportunity)
	router.Post("/{id}/accept", handler.accept)
	router.Post("/{id}/decline", handler.decline)
	router.Post("/{id}/complete", handler.complete)

	return router
}

// # Volunteer Endpoints

// applyRequest defines the expected JSON payload for applications.
type applyRequest struct {
	OpportunityID string `json:"opportunity_id"`
	Message       string `json:"message"`
}

/*
POST /api/v1/participations.

Description: Applies the authenticated volunteer to a published
opportunity. Re-applying after a withdrawal or decline is allowed.

Request:
  - body: applyRequest

Response:
  - 201: Participation: The applied record
  - 404: ErrNotFound: Unknown or unpublished opportunity
  - 409: ErrConflict: Duplicate application or opportunity full
*/
func (handler *Handler) apply(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input applyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("opportunity_id", input.OpportunityID).
		UUID("opportunity_id", input.OpportunityID).
		MaxLen("message", input.Message, 1000)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	participation, err := handler.participationService.Apply(request.Context(), userID, input.OpportunityID, input.Message)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, participation)
}

/*
GET /api/v1/participations/mine.

Description: Lists the authenticated volunteer's participations.

Response:
  - 200: []Participation
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	participations, err := handler.participationService.ListMine(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, participations)
}

/*
POST /api/v1/participations/{id}/withdraw.

Description: Withdraws the volunteer's own applied or accepted
participation.

Response:
  - 204: No Content
  - 403: ErrForbidden: Not the applicant
  - 409: ErrConflict: Illegal state transition
*/
func (handler *Handler) withdraw(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.participationService.Withdraw(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Owner Endpoints

/*
GET /api/v1/participations/opportunity/{oppID}.

Description: Lists every participation for an opportunity owned by the
caller's organization.

Response:
  - 200: []Participation
  - 403: ErrForbidden: Not the owner
*/
func (handler *Handler) listForOpportunity(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	participations, err := handler.participationService.ListForOpportunity(request.Context(), userID, requestutil.ID(request, "oppID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, participations)
}

/*
POST /api/v1/participations/{id}/accept.
*/
func (handler *Handler) accept(writer http.ResponseWriter, request *http.Request) {
	handler.decide(writer, request, handler.participationService.Accept)
}

/*
POST /api/v1/participations/{id}/decline.
*/
func (handler *Handler) decline(writer http.ResponseWriter, request *http.Request) {
	handler.decide(writer, request, handler.participationService.Decline)
}

/*
POST /api/v1/participations/{id}/complete.
*/
func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	handler.decide(writer, request, handler.participationService.Complete)
}

// decide is the shared owner-decision endpoint body.
func (handler *Handler) decide(
	writer http.ResponseWriter,
	request *http.Request,
	action func(ctx context.Context, ownerUserID, participationID string) error,
) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := action(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
