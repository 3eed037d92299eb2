package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-cal/server/internal/api/middleware"
	"github.com/meridian-cal/server/internal/api/problem"
	"github.com/meridian-cal/server/internal/domain/events"
	"github.com/meridian-cal/server/internal/validation"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type createEventRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	IsAllDay    bool       `json:"is_all_day"`
}

type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	IsAllDay    *bool      `json:"is_all_day"`
}

type eventResponse struct {
	EventID       uuid.UUID `json:"event_id"`
	CalendarID    uuid.UUID `json:"calendar_id"`
	CreatorUserID uuid.UUID `json:"creator_user_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	IsAllDay      bool      `json:"is_all_day"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toEventResponse(e *events.Event) eventResponse {
	return eventResponse{
		EventID:       e.EventID,
		CalendarID:    e.CalendarID,
		CreatorUserID: e.CreatorUserID,
		Title:         e.Title,
		Description:   e.Description,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		IsAllDay:      e.IsAllDay,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	calendarID, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}

	var req createEventRequest
	if !decodeJSON(w, r, &req, h.Env) {
		return
	}
	if req.StartTime == nil {
		writeDomainError(w, r, validation.NewError("start_time", "is required"), h.Env)
		return
	}
	if req.EndTime == nil {
		writeDomainError(w, r, validation.NewError("end_time", "is required"), h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), *principal, calendarID, events.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   *req.StartTime,
		EndTime:     *req.EndTime,
		IsAllDay:    req.IsAllDay,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	calendarID, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), *principal, calendarID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	resp := make([]eventResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toEventResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": resp})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	calendarID, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID", h.Env)
	if !ok {
		return
	}

	event, err := h.Service.Get(r.Context(), *principal, calendarID, eventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	calendarID, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID", h.Env)
	if !ok {
		return
	}

	var req updateEventRequest
	if !decodeJSON(w, r, &req, h.Env) {
		return
	}

	event, err := h.Service.Update(r.Context(), *principal, calendarID, eventID, events.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAllDay:    req.IsAllDay,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	calendarID, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), *principal, calendarID, eventID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
