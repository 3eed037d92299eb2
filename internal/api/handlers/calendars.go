package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-cal/server/internal/api/middleware"
	"github.com/meridian-cal/server/internal/api/problem"
	"github.com/meridian-cal/server/internal/domain/calendars"
)

type CalendarsHandler struct {
	Service *calendars.Service
	Env     string
}

func NewCalendarsHandler(service *calendars.Service, env string) *CalendarsHandler {
	return &CalendarsHandler{Service: service, Env: env}
}

type createCalendarRequest struct {
	Name        string      `json:"name"`
	EditorIDs   []uuid.UUID `json:"editor_ids"`
	ReaderIDs   []uuid.UUID `json:"reader_ids"`
	PublicRead  bool        `json:"public_read"`
	PublicWrite bool        `json:"public_write"`
}

type updateCalendarRequest struct {
	Name        *string      `json:"name"`
	EditorIDs   *[]uuid.UUID `json:"editor_ids"`
	ReaderIDs   *[]uuid.UUID `json:"reader_ids"`
	PublicRead  *bool        `json:"public_read"`
	PublicWrite *bool        `json:"public_write"`
}

type calendarResponse struct {
	CalendarID  uuid.UUID   `json:"calendar_id"`
	OwnerUserID uuid.UUID   `json:"owner_user_id"`
	Name        string      `json:"name"`
	EditorIDs   []uuid.UUID `json:"editor_ids"`
	ReaderIDs   []uuid.UUID `json:"reader_ids"`
	PublicRead  bool        `json:"public_read"`
	PublicWrite bool        `json:"public_write"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toCalendarResponse(c *calendars.Calendar) calendarResponse {
	editors := c.EditorIDs
	if editors == nil {
		editors = []uuid.UUID{}
	}
	readers := c.ReaderIDs
	if readers == nil {
		readers = []uuid.UUID{}
	}
	return calendarResponse{
		CalendarID:  c.CalendarID,
		OwnerUserID: c.OwnerUserID,
		Name:        c.Name,
		EditorIDs:   editors,
		ReaderIDs:   readers,
		PublicRead:  c.PublicRead,
		PublicWrite: c.PublicWrite,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (h *CalendarsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}

	var req createCalendarRequest
	if !decodeJSON(w, r, &req, h.Env) {
		return
	}

	calendar, err := h.Service.Create(r.Context(), *principal, calendars.CreateParams{
		Name:        req.Name,
		EditorIDs:   req.EditorIDs,
		ReaderIDs:   req.ReaderIDs,
		PublicRead:  req.PublicRead,
		PublicWrite: req.PublicWrite,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toCalendarResponse(calendar))
}

func (h *CalendarsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}

	items, err := h.Service.List(r.Context(), *principal)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	resp := make([]calendarResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toCalendarResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": resp})
}

func (h *CalendarsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	id, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}

	calendar, err := h.Service.Get(r.Context(), *principal, id)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResponse(calendar))
}

func (h *CalendarsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	id, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}

	var req updateCalendarRequest
	if !decodeJSON(w, r, &req, h.Env) {
		return
	}

	calendar, err := h.Service.Update(r.Context(), *principal, id, calendars.UpdateParams{
		Name:        req.Name,
		EditorIDs:   req.EditorIDs,
		ReaderIDs:   req.ReaderIDs,
		PublicRead:  req.PublicRead,
		PublicWrite: req.PublicWrite,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResponse(calendar))
}

func (h *CalendarsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}
	id, ok := pathUUID(w, r, "calendarID", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), *principal, id); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
