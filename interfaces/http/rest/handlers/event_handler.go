package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamcal-backend/application/services"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/validators"
	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/common"
	pkgerrors "teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/extensions"
	"teamcal-backend/pkg/utils"
)

// EventHandler handles calendar event HTTP requests
type EventHandler struct {
	events *services.EventService
	hooks  *extensions.HookManager
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *services.EventService, hooks *extensions.HookManager, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		hooks:  hooks,
		errors: errorHandler,
		logger: logger,
	}
}

// CreateEventRequest is the body for creating an event. Times are RFC3339;
// the ordering rule and field limits are enforced by the domain.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Color       string    `json:"color,omitempty" validate:"omitempty,hexcolor"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required"`
}

// UpdateEventRequest is the partial body for updating an event. Absent
// fields keep their stored values.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Color       *string    `json:"color,omitempty" validate:"omitempty,hexcolor"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
}

// EventResponse is the wire shape of a calendar event
type EventResponse struct {
	ID          string `json:"id"`
	TeamID      string `json:"teamId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Color       string `json:"color,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	StartDay    string `json:"startDay"`
	CreatedBy   string `json:"createdBy"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toEventResponse(event *entities.Event) EventResponse {
	resp := EventResponse{
		ID:          event.ID().String(),
		TeamID:      event.TeamID().String(),
		Title:       event.Details().Title(),
		Description: event.Details().Description(),
		Category:    event.Category().String(),
		StartTime:   utils.FormatRFC3339(event.Span().Start()),
		EndTime:     utils.FormatRFC3339(event.Span().End()),
		StartDay:    event.StartDay(),
		CreatedBy:   event.CreatedBy().String(),
		Version:     event.Version(),
		CreatedAt:   utils.FormatRFC3339(event.CreatedAt()),
		UpdatedAt:   utils.FormatRFC3339(event.UpdatedAt()),
	}
	if !event.Color().IsZero() {
		resp.Color = event.Color().String()
	}
	return resp
}

func toEventResponses(events []*entities.Event) []EventResponse {
	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	return resp
}

// CreateEvent handles POST /teams/{teamID}/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateEventRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	teamID := chi.URLParam(r, "teamID")
	event, err := h.events.Create(r.Context(), teamID, userCtx.UserID, validators.EventCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterEventCreate, extensions.HookData{
		TeamID:    teamID,
		EntityID:  event.ID().String(),
		Operation: "create",
		ActorID:   userCtx.UserID,
	})

	common.RespondJSON(w, http.StatusCreated, toEventResponse(event))
}

// GetEvent handles GET /teams/{teamID}/events/{eventID}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	event, err := h.events.Get(r.Context(), chi.URLParam(r, "teamID"), chi.URLParam(r, "eventID"), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toEventResponse(event))
}

// UpdateEvent handles PUT /teams/{teamID}/events/{eventID}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateEventRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	teamID := chi.URLParam(r, "teamID")
	eventID := chi.URLParam(r, "eventID")
	event, err := h.events.Update(r.Context(), teamID, eventID, userCtx.UserID, validators.EventUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterEventUpdate, extensions.HookData{
		TeamID:    teamID,
		EntityID:  eventID,
		Operation: "update",
		ActorID:   userCtx.UserID,
	})

	common.RespondJSON(w, http.StatusOK, toEventResponse(event))
}

// DeleteEvent handles DELETE /teams/{teamID}/events/{eventID}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	teamID := chi.URLParam(r, "teamID")
	eventID := chi.URLParam(r, "eventID")
	if err := h.events.Delete(r.Context(), teamID, eventID, userCtx.UserID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterEventDelete, extensions.HookData{
		TeamID:    teamID,
		EntityID:  eventID,
		Operation: "delete",
		ActorID:   userCtx.UserID,
	})

	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /teams/{teamID}/events with optional category
// and createdBy filters. Filters are exclusive; category wins when both
// are present.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	teamID := chi.URLParam(r, "teamID")

	var events []*entities.Event
	switch {
	case r.URL.Query().Get("category") != "":
		events, err = h.events.ListByCategory(r.Context(), teamID, userCtx.UserID, r.URL.Query().Get("category"))
	case r.URL.Query().Get("createdBy") != "":
		events, err = h.events.ListByCreator(r.Context(), teamID, userCtx.UserID, r.URL.Query().Get("createdBy"))
	default:
		events, err = h.events.ListByTeam(r.Context(), teamID, userCtx.UserID)
	}
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := toEventResponses(events)
	common.RespondWithMeta(w, http.StatusOK, resp, common.CountMeta(common.ExtractRequestID(r), len(resp)))
}
