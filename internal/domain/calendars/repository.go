package calendars

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-cal/server/internal/auth"
)

var ErrNotFound = errors.New("calendar not found")

// ErrForbidden is returned when a resolved principal is not authorized for
// the requested calendar operation.
var ErrForbidden = errors.New("not authorized for this calendar")

type Calendar struct {
	CalendarID  uuid.UUID
	OwnerUserID uuid.UUID
	Name        string
	EditorIDs   []uuid.UUID
	ReaderIDs   []uuid.UUID
	PublicRead  bool
	PublicWrite bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether the principal is the recorded owner.
func (c *Calendar) OwnedBy(p auth.Principal) bool {
	return p.IsPersisted() && c.OwnerUserID == p.UserID
}

// ReadableBy reports whether the principal may read the calendar: the
// owner always, anyone authenticated when public_read is set. The stored
// reader/editor lists are not consulted (see design notes).
func (c *Calendar) ReadableBy(p auth.Principal) bool {
	return c.PublicRead || c.OwnedBy(p)
}

type CreateRecord struct {
	OwnerUserID uuid.UUID
	Name        string
	EditorIDs   []uuid.UUID
	ReaderIDs   []uuid.UUID
	PublicRead  bool
	PublicWrite bool
}

// UpdateRecord holds a partial update: nil fields keep their stored value.
type UpdateRecord struct {
	Name        *string
	EditorIDs   *[]uuid.UUID
	ReaderIDs   *[]uuid.UUID
	PublicRead  *bool
	PublicWrite *bool
}

type Repository interface {
	Create(ctx context.Context, record CreateRecord) (*Calendar, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Calendar, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Calendar, error)
	Update(ctx context.Context, id uuid.UUID, record UpdateRecord) (*Calendar, error)
	// Delete removes the calendar and all of its events in one
	// transaction. Returns ErrNotFound if no row was deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}
