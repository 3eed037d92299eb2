package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/meridian-cal/server/internal/auth"
	"github.com/meridian-cal/server/internal/domain/calendars"
	"github.com/meridian-cal/server/internal/validation"
)

type fakeRepo struct {
	events map[uuid.UUID]*Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[uuid.UUID]*Event)}
}

func (f *fakeRepo) Create(ctx context.Context, record CreateRecord) (*Event, error) {
	now := time.Now().UTC()
	event := &Event{
		EventID:       uuid.New(),
		CalendarID:    record.CalendarID,
		CreatorUserID: record.CreatorUserID,
		Title:         record.Title,
		Description:   record.Description,
		StartTime:     record.StartTime,
		EndTime:       record.EndTime,
		IsAllDay:      record.IsAllDay,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.events[event.EventID] = event
	return event, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeRepo) ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]Event, error) {
	out := []Event{}
	for _, e := range f.events {
		if e.CalendarID == calendarID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, id uuid.UUID, record UpdateRecord) (*Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	if record.Title != nil {
		event.Title = *record.Title
	}
	if record.Description != nil {
		event.Description = record.Description
	}
	if record.StartTime != nil {
		event.StartTime = *record.StartTime
	}
	if record.EndTime != nil {
		event.EndTime = *record.EndTime
	}
	if record.IsAllDay != nil {
		event.IsAllDay = *record.IsAllDay
	}
	event.UpdatedAt = time.Now().UTC()
	copied := *event
	return &copied, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.events[id]; !ok {
		return ErrNotFound
	}
	delete(f.events, id)
	return nil
}

type fakeCalendarStore struct {
	calendars map[uuid.UUID]*calendars.Calendar
}

func (f *fakeCalendarStore) GetByID(ctx context.Context, id uuid.UUID) (*calendars.Calendar, error) {
	calendar, ok := f.calendars[id]
	if !ok {
		return nil, calendars.ErrNotFound
	}
	return calendar, nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	owner    auth.Principal
	calendar *calendars.Calendar
}

func newFixture(t *testing.T, publicRead bool) *fixture {
	t.Helper()
	owner := auth.Principal{UserID: uuid.New(), Username: "alice"}
	calendar := &calendars.Calendar{
		CalendarID:  uuid.New(),
		OwnerUserID: owner.UserID,
		Name:        "work",
		PublicRead:  publicRead,
	}
	repo := newFakeRepo()
	store := &fakeCalendarStore{calendars: map[uuid.UUID]*calendars.Calendar{calendar.CalendarID: calendar}}
	return &fixture{
		svc:      NewService(repo, store, zerolog.Nop()),
		repo:     repo,
		owner:    owner,
		calendar: calendar,
	}
}

func validParams() CreateParams {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return CreateParams{
		Title:     "standup",
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	}
}

func strPtr(s string) *string { return &s }

func TestCreateRecordsCreator(t *testing.T) {
	fx := newFixture(t, false)

	event, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())

	require.NoError(t, err)
	require.Equal(t, fx.owner.UserID, event.CreatorUserID)
	require.Equal(t, fx.calendar.CalendarID, event.CalendarID)
	require.Equal(t, "standup", event.Title)
}

func TestCreateDeniedForNonOwner(t *testing.T) {
	fx := newFixture(t, true)
	stranger := auth.Principal{UserID: uuid.New(), Username: "bob"}

	_, err := fx.svc.Create(context.Background(), stranger, fx.calendar.CalendarID, validParams())

	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateUnknownCalendar(t *testing.T) {
	fx := newFixture(t, false)

	_, err := fx.svc.Create(context.Background(), fx.owner, uuid.New(), validParams())

	require.ErrorIs(t, err, calendars.ErrNotFound)
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	fx := newFixture(t, false)
	params := validParams()
	params.Title = ""

	_, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, params)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "title")
}

func TestCreateRejectsReversedRange(t *testing.T) {
	fx := newFixture(t, false)
	params := validParams()
	params.StartTime, params.EndTime = params.EndTime, params.StartTime

	_, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, params)

	requireReason(t, err, ReasonInvalidTimeRange)
}

func TestCreateRejectsMisalignedAllDay(t *testing.T) {
	fx := newFixture(t, false)
	params := validParams()
	params.IsAllDay = true

	_, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, params)

	requireReason(t, err, ReasonInvalidAllDayStart)
}

func TestListRequiresReadableCalendar(t *testing.T) {
	fx := newFixture(t, false)
	stranger := auth.Principal{UserID: uuid.New(), Username: "bob"}

	_, err := fx.svc.List(context.Background(), stranger, fx.calendar.CalendarID)

	require.ErrorIs(t, err, ErrForbidden)
}

func TestListPublicReadCalendar(t *testing.T) {
	fx := newFixture(t, true)
	stranger := auth.Principal{UserID: uuid.New(), Username: "bob"}

	_, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	events, err := fx.svc.List(context.Background(), stranger, fx.calendar.CalendarID)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestGetChecksCalendarMembership(t *testing.T) {
	fx := newFixture(t, false)
	other := &calendars.Calendar{
		CalendarID:  uuid.New(),
		OwnerUserID: fx.owner.UserID,
		Name:        "other",
	}
	store := &fakeCalendarStore{calendars: map[uuid.UUID]*calendars.Calendar{
		fx.calendar.CalendarID: fx.calendar,
		other.CalendarID:       other,
	}}
	svc := NewService(fx.repo, store, zerolog.Nop())

	event, err := svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), fx.owner, other.CalendarID, event.EventID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateChangesOnlySuppliedFields(t *testing.T) {
	fx := newFixture(t, false)

	event, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	updated, err := fx.svc.Update(context.Background(), fx.owner, fx.calendar.CalendarID, event.EventID, UpdateParams{
		Title: strPtr("renamed"),
	})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, event.StartTime, updated.StartTime)
	require.Equal(t, event.EndTime, updated.EndTime)
}

func TestUpdateDeniedForNonCreator(t *testing.T) {
	fx := newFixture(t, false)
	stranger := auth.Principal{UserID: uuid.New(), Username: "bob"}

	event, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	_, err = fx.svc.Update(context.Background(), stranger, fx.calendar.CalendarID, event.EventID, UpdateParams{
		Title: strPtr("hijacked"),
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateRevalidatesSuppliedTimes(t *testing.T) {
	fx := newFixture(t, false)

	event, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	badStart := event.EndTime.Add(time.Hour)
	_, err = fx.svc.Update(context.Background(), fx.owner, fx.calendar.CalendarID, event.EventID, UpdateParams{
		StartTime: timePtr(badStart),
		EndTime:   timePtr(badStart.Add(-time.Minute)),
	})
	requireReason(t, err, ReasonInvalidTimeRange)
}

func TestUpdateAllDayFlagAloneSkipsTimeChecks(t *testing.T) {
	fx := newFixture(t, false)

	event, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	// Only the flag is supplied, so midnight alignment of the stored
	// times is not re-checked here.
	updated, err := fx.svc.Update(context.Background(), fx.owner, fx.calendar.CalendarID, event.EventID, UpdateParams{
		IsAllDay: boolPtr(true),
	})
	require.NoError(t, err)
	require.True(t, updated.IsAllDay)
}

func TestDeleteByCreator(t *testing.T) {
	fx := newFixture(t, false)

	event, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(context.Background(), fx.owner, fx.calendar.CalendarID, event.EventID))

	_, err = fx.svc.Get(context.Background(), fx.owner, fx.calendar.CalendarID, event.EventID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDeniedForNonCreator(t *testing.T) {
	fx := newFixture(t, false)
	stranger := auth.Principal{UserID: uuid.New(), Username: "bob"}

	event, err := fx.svc.Create(context.Background(), fx.owner, fx.calendar.CalendarID, validParams())
	require.NoError(t, err)

	err = fx.svc.Delete(context.Background(), stranger, fx.calendar.CalendarID, event.EventID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteUnknownEvent(t *testing.T) {
	fx := newFixture(t, false)

	err := fx.svc.Delete(context.Background(), fx.owner, fx.calendar.CalendarID, uuid.New())

	require.ErrorIs(t, err, ErrNotFound)
}
