package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meridian-cal/server/internal/domain/calendars"
)

var _ calendars.Repository = (*CalendarRepository)(nil)

const calendarColumns = `calendar_id, owner_user_id, calendar_name, editor_ids, reader_ids,
       public_read, public_write, created_at, updated_at`

func (r *CalendarRepository) Create(ctx context.Context, record calendars.CreateRecord) (*calendars.Calendar, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO calendars (owner_user_id, calendar_name, editor_ids, reader_ids, public_read, public_write)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+calendarColumns,
		record.OwnerUserID,
		record.Name,
		uuidArray(record.EditorIDs),
		uuidArray(record.ReaderIDs),
		record.PublicRead,
		record.PublicWrite,
	)

	calendar, err := scanCalendar(row)
	if err != nil {
		return nil, fmt.Errorf("create calendar: %w", err)
	}
	return calendar, nil
}

func (r *CalendarRepository) GetByID(ctx context.Context, id uuid.UUID) (*calendars.Calendar, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
SELECT `+calendarColumns+`
  FROM calendars
 WHERE calendar_id = $1`, id)

	calendar, err := scanCalendar(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, calendars.ErrNotFound
		}
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	return calendar, nil
}

func (r *CalendarRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]calendars.Calendar, error) {
	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT `+calendarColumns+`
  FROM calendars
 WHERE owner_user_id = $1
 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	defer rows.Close()

	items := make([]calendars.Calendar, 0)
	for rows.Next() {
		calendar, err := scanCalendar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar: %w", err)
		}
		items = append(items, *calendar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return items, nil
}

// Update applies the non-nil fields and refreshes updated_at. NULL
// parameters fall through to the stored value via COALESCE.
func (r *CalendarRepository) Update(ctx context.Context, id uuid.UUID, record calendars.UpdateRecord) (*calendars.Calendar, error) {
	var editorIDs, readerIDs any
	if record.EditorIDs != nil {
		editorIDs = uuidArray(*record.EditorIDs)
	}
	if record.ReaderIDs != nil {
		readerIDs = uuidArray(*record.ReaderIDs)
	}

	row := pick(r.pool, r.tx).QueryRow(ctx, `
UPDATE calendars
   SET calendar_name = COALESCE($2, calendar_name),
       editor_ids    = COALESCE($3::uuid[], editor_ids),
       reader_ids    = COALESCE($4::uuid[], reader_ids),
       public_read   = COALESCE($5, public_read),
       public_write  = COALESCE($6, public_write),
       updated_at    = now()
 WHERE calendar_id = $1
RETURNING `+calendarColumns,
		id,
		record.Name,
		editorIDs,
		readerIDs,
		record.PublicRead,
		record.PublicWrite,
	)

	calendar, err := scanCalendar(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, calendars.ErrNotFound
		}
		return nil, fmt.Errorf("update calendar: %w", err)
	}
	return calendar, nil
}

// Delete removes the calendar and its events in one transaction. The
// child delete runs first so the cascade is explicit rather than left to
// the schema.
func (r *CalendarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.tx != nil {
		return deleteCalendarCascade(ctx, r.tx, id)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := deleteCalendarCascade(ctx, tx, id); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func deleteCalendarCascade(ctx context.Context, q queryer, id uuid.UUID) error {
	if _, err := q.Exec(ctx, `DELETE FROM calendar_events WHERE calendar_id = $1`, id); err != nil {
		return fmt.Errorf("delete calendar events: %w", err)
	}
	tag, err := q.Exec(ctx, `DELETE FROM calendars WHERE calendar_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete calendar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calendars.ErrNotFound
	}
	return nil
}

func scanCalendar(row pgx.Row) (*calendars.Calendar, error) {
	var calendar calendars.Calendar
	if err := row.Scan(
		&calendar.CalendarID,
		&calendar.OwnerUserID,
		&calendar.Name,
		&calendar.EditorIDs,
		&calendar.ReaderIDs,
		&calendar.PublicRead,
		&calendar.PublicWrite,
		&calendar.CreatedAt,
		&calendar.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &calendar, nil
}

// uuidArray normalizes a nil slice to an empty array so the uuid[] column
// never stores NULL.
func uuidArray(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
