package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-cal/server/internal/api/middleware"
	"github.com/meridian-cal/server/internal/api/problem"
	"github.com/meridian-cal/server/internal/domain/users"
)

type UsersHandler struct {
	Service *users.Service
	Env     string
}

func NewUsersHandler(service *users.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

type createUserRequest struct {
	Username string `json:"username"`
}

type userResponse struct {
	UserID           uuid.UUID   `json:"user_id"`
	Username         string      `json:"username"`
	AccessKey        string      `json:"access_key,omitempty"`
	OwnedCalendarIDs []uuid.UUID `json:"owned_calendar_ids"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Create registers a new user. The generated access key is returned in
// this response and never again.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	// Any authenticated principal may register users, including the
	// synthesized bootstrap root before its row is seeded.
	if middleware.CurrentPrincipal(r) == nil {
		problem.Write(w, r, http.StatusForbidden, typeForbidden, "Forbidden", nil, h.Env)
		return
	}

	var req createUserRequest
	if !decodeJSON(w, r, &req, h.Env) {
		return
	}

	user, err := h.Service.Create(r.Context(), users.CreateParams{Username: req.Username})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		UserID:           user.UserID,
		Username:         user.Username,
		AccessKey:        user.AccessKey,
		OwnedCalendarIDs: []uuid.UUID{},
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	})
}

// Me returns the profile of the authenticated user. The access key is
// never echoed back.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		problem.Write(w, r, http.StatusInternalServerError, typeServerError, "Server error", nil, h.Env)
		return
	}

	principal := middleware.CurrentPrincipal(r)
	if principal == nil || !principal.IsPersisted() {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", nil, h.Env)
		return
	}

	user, err := h.Service.GetByID(r.Context(), principal.UserID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	ownedIDs, err := h.Service.OwnedCalendarIDs(r.Context(), user.UserID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	if ownedIDs == nil {
		ownedIDs = []uuid.UUID{}
	}

	writeJSON(w, http.StatusOK, userResponse{
		UserID:           user.UserID,
		Username:         user.Username,
		OwnedCalendarIDs: ownedIDs,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	})
}
