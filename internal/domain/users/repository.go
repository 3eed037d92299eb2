package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

// ErrUsernameTaken is returned when the unique constraint on username is
// violated. The insert is never retried; callers surface it as a conflict.
var ErrUsernameTaken = errors.New("username already exists")

type User struct {
	UserID    uuid.UUID
	Username  string
	AccessKey string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, username, accessKey string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateAccessKey(ctx context.Context, id uuid.UUID, accessKey string) (*User, error)
	OwnedCalendarIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}
