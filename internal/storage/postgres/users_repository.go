package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meridian-cal/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

const userColumns = `user_id, username, access_key, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, username, accessKey string) (*users.User, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO users (username, access_key)
VALUES ($1, $2)
RETURNING `+userColumns, username, accessKey)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE user_id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
SELECT `+userColumns+`
  FROM users
 WHERE username = $1`, username)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateAccessKey(ctx context.Context, id uuid.UUID, accessKey string) (*users.User, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
UPDATE users
   SET access_key = $2, updated_at = now()
 WHERE user_id = $1
RETURNING `+userColumns, id, accessKey)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("update access key: %w", err)
	}
	return user, nil
}

func (r *UserRepository) OwnedCalendarIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := pick(r.pool, r.tx).Query(ctx, `
SELECT calendar_id
  FROM calendars
 WHERE owner_user_id = $1
 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("list owned calendars: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var calendarID uuid.UUID
		if err := rows.Scan(&calendarID); err != nil {
			return nil, fmt.Errorf("scan owned calendar id: %w", err)
		}
		ids = append(ids, calendarID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list owned calendars: %w", err)
	}
	return ids, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var user users.User
	if err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.AccessKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
