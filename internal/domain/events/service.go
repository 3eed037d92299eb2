// Package events manages calendar events and the time-range rules that
// gate their acceptance.
//
// Authorization follows the parent calendar for creation and listing
// (owner-only writes, public_read-aware reads) and the recorded creator
// for per-event mutation and deletion.
package events

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridian-cal/server/internal/auth"
	"github.com/meridian-cal/server/internal/domain/calendars"
	"github.com/meridian-cal/server/internal/validation"
)

// CalendarStore provides the parent-calendar lookup used for
// authorization decisions.
type CalendarStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*calendars.Calendar, error)
}

type Service struct {
	repo      Repository
	calendars CalendarStore
	logger    zerolog.Logger
	validate  *validator.Validate
}

func NewService(repo Repository, calendarStore CalendarStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		calendars: calendarStore,
		logger:    logger.With().Str("component", "events").Logger(),
		validate:  validator.New(),
	}
}

type CreateParams struct {
	Title       string  `validate:"required,min=1,max=255"`
	Description *string `validate:"omitempty,max=1000"`
	StartTime   time.Time
	EndTime     time.Time
	IsAllDay    bool
}

type UpdateParams struct {
	Title       *string `validate:"omitempty,min=1,max=255"`
	Description *string `validate:"omitempty,max=1000"`
	StartTime   *time.Time
	EndTime     *time.Time
	IsAllDay    *bool
}

// Create adds an event to a calendar. Only the calendar owner may create
// events; the current principal is recorded as the creator.
func (s *Service) Create(ctx context.Context, principal auth.Principal, calendarID uuid.UUID, params CreateParams) (*Event, error) {
	calendar, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if !calendar.OwnedBy(principal) {
		return nil, ErrForbidden
	}

	if err := s.validate.Struct(params); err != nil {
		return nil, validation.FromValidator(err)
	}
	allDay := params.IsAllDay
	if err := ValidateTimes(&params.StartTime, &params.EndTime, &allDay); err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, CreateRecord{
		CalendarID:    calendarID,
		CreatorUserID: principal.UserID,
		Title:         params.Title,
		Description:   params.Description,
		StartTime:     params.StartTime,
		EndTime:       params.EndTime,
		IsAllDay:      params.IsAllDay,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", event.EventID.String()).
		Str("calendar_id", calendarID.String()).
		Msg("event created")
	return event, nil
}

// List returns all events of a calendar the principal may read.
func (s *Service) List(ctx context.Context, principal auth.Principal, calendarID uuid.UUID) ([]Event, error) {
	calendar, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if !calendar.ReadableBy(principal) {
		return nil, ErrForbidden
	}
	return s.repo.ListByCalendar(ctx, calendarID)
}

// Get returns a single event of a calendar the principal may read.
func (s *Service) Get(ctx context.Context, principal auth.Principal, calendarID, eventID uuid.UUID) (*Event, error) {
	calendar, err := s.calendars.GetByID(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if !calendar.ReadableBy(principal) {
		return nil, ErrForbidden
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CalendarID != calendarID {
		return nil, ErrNotFound
	}
	return event, nil
}

// Update applies a partial update to an event. Only the recorded creator
// may update; only supplied fields change, and the time-range rules
// re-apply to whichever time fields the payload carries.
func (s *Service) Update(ctx context.Context, principal auth.Principal, calendarID, eventID uuid.UUID, params UpdateParams) (*Event, error) {
	event, err := s.getInCalendar(ctx, calendarID, eventID)
	if err != nil {
		return nil, err
	}
	if !event.CreatedBy(principal) {
		return nil, ErrForbidden
	}

	if err := s.validate.Struct(params); err != nil {
		return nil, validation.FromValidator(err)
	}
	if err := ValidateTimes(params.StartTime, params.EndTime, params.IsAllDay); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, eventID, UpdateRecord{
		Title:       params.Title,
		Description: params.Description,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		IsAllDay:    params.IsAllDay,
	})
}

// Delete removes an event. Only the recorded creator may delete.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, calendarID, eventID uuid.UUID) error {
	event, err := s.getInCalendar(ctx, calendarID, eventID)
	if err != nil {
		return err
	}
	if !event.CreatedBy(principal) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}
	s.logger.Info().
		Str("event_id", eventID.String()).
		Str("calendar_id", calendarID.String()).
		Msg("event deleted")
	return nil
}

func (s *Service) getInCalendar(ctx context.Context, calendarID, eventID uuid.UUID) (*Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CalendarID != calendarID {
		return nil, ErrNotFound
	}
	return event, nil
}
