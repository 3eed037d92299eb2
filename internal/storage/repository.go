package storage

import (
	"context"

	"github.com/meridian-cal/server/internal/auth"
	"github.com/meridian-cal/server/internal/domain/calendars"
	"github.com/meridian-cal/server/internal/domain/events"
	"github.com/meridian-cal/server/internal/domain/users"
)

// Repository groups data access by domain. WithTx runs the closure against
// a repository bound to one transaction: committed on success, rolled back
// on error.
type Repository interface {
	Users() users.Repository
	Calendars() calendars.Repository
	Events() events.Repository
	Principals() auth.PrincipalStore

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
