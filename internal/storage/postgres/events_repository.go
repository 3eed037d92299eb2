package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meridian-cal/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

const eventColumns = `event_id, calendar_id, creator_user_id, title, description,
       start_time, end_time, is_all_day, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, record events.CreateRecord) (*events.Event, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO calendar_events (calendar_id, creator_user_id, title, description, start_time, end_time, is_all_day)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+eventColumns,
		record.CalendarID,
		record.CreatorUserID,
		record.Title,
		record.Description,
		record.StartTime,
		record.EndTime,
		record.IsAllDay,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM calendar_events
 WHERE event_id = $1`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]events.Event, error) {
	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT `+eventColumns+`
  FROM calendar_events
 WHERE calendar_id = $1
 ORDER BY start_time, event_id`, calendarID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return items, nil
}

// Update applies the non-nil fields and refreshes updated_at.
func (r *EventRepository) Update(ctx context.Context, id uuid.UUID, record events.UpdateRecord) (*events.Event, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
UPDATE calendar_events
   SET title       = COALESCE($2, title),
       description = COALESCE($3, description),
       start_time  = COALESCE($4, start_time),
       end_time    = COALESCE($5, end_time),
       is_all_day  = COALESCE($6, is_all_day),
       updated_at  = now()
 WHERE event_id = $1
RETURNING `+eventColumns,
		id,
		record.Title,
		record.Description,
		record.StartTime,
		record.EndTime,
		record.IsAllDay,
	)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM calendar_events WHERE event_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	if err := row.Scan(
		&event.EventID,
		&event.CalendarID,
		&event.CreatorUserID,
		&event.Title,
		&event.Description,
		&event.StartTime,
		&event.EndTime,
		&event.IsAllDay,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}
