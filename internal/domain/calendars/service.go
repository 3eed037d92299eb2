// Package calendars manages calendar aggregates and their ownership rules.
//
// Authorization is ownership-based: only the recorded owner may mutate or
// delete a calendar. Reads additionally allow any authenticated principal
// when the calendar is flagged public_read. The stored editor/reader id
// lists are persisted and returned but not enforced for gating.
package calendars

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridian-cal/server/internal/auth"
	"github.com/meridian-cal/server/internal/validation"
)

type Service struct {
	repo     Repository
	logger   zerolog.Logger
	validate *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		logger:   logger.With().Str("component", "calendars").Logger(),
		validate: validator.New(),
	}
}

type CreateParams struct {
	Name        string `validate:"required,min=1,max=255"`
	EditorIDs   []uuid.UUID
	ReaderIDs   []uuid.UUID
	PublicRead  bool
	PublicWrite bool
}

type UpdateParams struct {
	Name        *string `validate:"omitempty,min=1,max=255"`
	EditorIDs   *[]uuid.UUID
	ReaderIDs   *[]uuid.UUID
	PublicRead  *bool
	PublicWrite *bool
}

// Create creates a calendar owned by the current principal.
func (s *Service) Create(ctx context.Context, principal auth.Principal, params CreateParams) (*Calendar, error) {
	if !principal.IsPersisted() {
		return nil, ErrForbidden
	}
	if err := s.validate.Struct(params); err != nil {
		return nil, validation.FromValidator(err)
	}

	calendar, err := s.repo.Create(ctx, CreateRecord{
		OwnerUserID: principal.UserID,
		Name:        params.Name,
		EditorIDs:   params.EditorIDs,
		ReaderIDs:   params.ReaderIDs,
		PublicRead:  params.PublicRead,
		PublicWrite: params.PublicWrite,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("calendar_id", calendar.CalendarID.String()).
		Str("owner_user_id", calendar.OwnerUserID.String()).
		Msg("calendar created")
	return calendar, nil
}

// List returns the calendars owned by the current principal.
func (s *Service) List(ctx context.Context, principal auth.Principal) ([]Calendar, error) {
	if !principal.IsPersisted() {
		return []Calendar{}, nil
	}
	return s.repo.ListByOwner(ctx, principal.UserID)
}

// Get returns a calendar the principal is allowed to read.
func (s *Service) Get(ctx context.Context, principal auth.Principal, id uuid.UUID) (*Calendar, error) {
	calendar, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !calendar.ReadableBy(principal) {
		return nil, ErrForbidden
	}
	return calendar, nil
}

// Update applies a partial update; only supplied fields change. Repeating
// the same payload is idempotent with respect to the stored fields.
func (s *Service) Update(ctx context.Context, principal auth.Principal, id uuid.UUID, params UpdateParams) (*Calendar, error) {
	calendar, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !calendar.OwnedBy(principal) {
		return nil, ErrForbidden
	}
	if err := s.validate.Struct(params); err != nil {
		return nil, validation.FromValidator(err)
	}

	return s.repo.Update(ctx, id, UpdateRecord{
		Name:        params.Name,
		EditorIDs:   params.EditorIDs,
		ReaderIDs:   params.ReaderIDs,
		PublicRead:  params.PublicRead,
		PublicWrite: params.PublicWrite,
	})
}

// Delete removes a calendar and, in the same transaction, its events.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	calendar, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !calendar.OwnedBy(principal) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().
		Str("calendar_id", id.String()).
		Msg("calendar deleted")
	return nil
}
