package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-cal/server/internal/auth"
)

var ErrNotFound = errors.New("event not found")

// ErrForbidden is returned when a resolved principal is not authorized for
// the requested event operation.
var ErrForbidden = errors.New("not authorized for this event")

type Event struct {
	EventID       uuid.UUID
	CalendarID    uuid.UUID
	CreatorUserID uuid.UUID
	Title         string
	Description   *string
	StartTime     time.Time
	EndTime       time.Time
	IsAllDay      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreatedBy reports whether the principal is the recorded creator.
func (e *Event) CreatedBy(p auth.Principal) bool {
	return p.IsPersisted() && e.CreatorUserID == p.UserID
}

type CreateRecord struct {
	CalendarID    uuid.UUID
	CreatorUserID uuid.UUID
	Title         string
	Description   *string
	StartTime     time.Time
	EndTime       time.Time
	IsAllDay      bool
}

// UpdateRecord holds a partial update: nil fields keep their stored value.
type UpdateRecord struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	IsAllDay    *bool
}

type Repository interface {
	Create(ctx context.Context, record CreateRecord) (*Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]Event, error)
	Update(ctx context.Context, id uuid.UUID, record UpdateRecord) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
