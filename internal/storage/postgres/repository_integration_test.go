package postgres_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/meridian-cal/server/internal/auth"
	"github.com/meridian-cal/server/internal/domain/calendars"
	"github.com/meridian-cal/server/internal/domain/events"
	"github.com/meridian-cal/server/internal/domain/users"
	"github.com/meridian-cal/server/internal/storage"
	"github.com/meridian-cal/server/internal/storage/postgres"
)

// setupPool provisions a migrated database. DATABASE_URL short-circuits
// the container for local runs against an existing instance.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		container, err := tcpostgres.Run(
			ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("meridian"),
			tcpostgres.WithUsername("meridian"),
			tcpostgres.WithPassword("meridian_dev"),
		)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = testcontainers.TerminateContainer(container)
		})

		dbURL, err = container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	require.NoError(t, migrateWithRetry(dbURL, migrationsPath(t), 10*time.Second))

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func migrationsPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "migrations")
}

func migrateWithRetry(databaseURL string, migrationsPath string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := postgres.MigrateUp(databaseURL, migrationsPath); err != nil {
			if time.Now().After(deadline) {
				return err
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		return nil
	}
}

func TestRepositoryIntegration(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	repo, err := postgres.NewRepository(pool)
	require.NoError(t, err)

	t.Run("user lifecycle", func(t *testing.T) {
		user, err := repo.Users().Create(ctx, "alice", "key-alice")
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, user.UserID)

		_, err = repo.Users().Create(ctx, "alice", "key-other")
		require.ErrorIs(t, err, users.ErrUsernameTaken)

		byName, err := repo.Users().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, user.UserID, byName.UserID)

		rotated, err := repo.Users().UpdateAccessKey(ctx, user.UserID, "key-alice-2")
		require.NoError(t, err)
		require.Equal(t, "key-alice-2", rotated.AccessKey)
		require.True(t, rotated.UpdatedAt.After(user.UpdatedAt) || rotated.UpdatedAt.Equal(user.UpdatedAt))

		_, err = repo.Users().GetByID(ctx, uuid.New())
		require.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("principal lookup", func(t *testing.T) {
		user, err := repo.Users().Create(ctx, "bob", "key-bob")
		require.NoError(t, err)

		principal, err := repo.Principals().LookupByAccessKey(ctx, "key-bob")
		require.NoError(t, err)
		require.Equal(t, user.UserID, principal.UserID)
		require.Equal(t, "bob", principal.Username)

		_, err = repo.Principals().LookupByAccessKey(ctx, "no-such-key")
		require.ErrorIs(t, err, auth.ErrNoPrincipal)
	})

	t.Run("root seeding is idempotent", func(t *testing.T) {
		require.NoError(t, postgres.SeedRootUser(ctx, pool, "bootstrap-secret"))
		require.NoError(t, postgres.SeedRootUser(ctx, pool, "another-secret"))

		principal, err := repo.Principals().LookupByUsername(ctx, auth.RootUsername)
		require.NoError(t, err)

		// The second call did not overwrite the first key.
		stored, err := repo.Principals().LookupByAccessKey(ctx, "bootstrap-secret")
		require.NoError(t, err)
		require.Equal(t, principal.UserID, stored.UserID)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.WithTx(ctx, func(ctx context.Context, txRepo storage.Repository) error {
			if _, err := txRepo.Users().Create(ctx, "ghost", "key-ghost"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = repo.Users().GetByUsername(ctx, "ghost")
		require.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("calendar partial update", func(t *testing.T) {
		owner, err := repo.Users().Create(ctx, "carol", "key-carol")
		require.NoError(t, err)

		calendar, err := repo.Calendars().Create(ctx, calendars.CreateRecord{
			OwnerUserID: owner.UserID,
			Name:        "work",
			PublicRead:  true,
		})
		require.NoError(t, err)
		require.Empty(t, calendar.EditorIDs)

		name := "renamed"
		updated, err := repo.Calendars().Update(ctx, calendar.CalendarID, calendars.UpdateRecord{Name: &name})
		require.NoError(t, err)
		require.Equal(t, "renamed", updated.Name)
		require.True(t, updated.PublicRead, "unsupplied fields keep stored values")

		editors := []uuid.UUID{owner.UserID}
		updated, err = repo.Calendars().Update(ctx, calendar.CalendarID, calendars.UpdateRecord{EditorIDs: &editors})
		require.NoError(t, err)
		require.Equal(t, editors, updated.EditorIDs)
		require.Equal(t, "renamed", updated.Name)
	})

	t.Run("calendar delete cascades to events", func(t *testing.T) {
		owner, err := repo.Users().Create(ctx, "dave", "key-dave")
		require.NoError(t, err)

		calendar, err := repo.Calendars().Create(ctx, calendars.CreateRecord{
			OwnerUserID: owner.UserID,
			Name:        "doomed",
		})
		require.NoError(t, err)

		start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		event, err := repo.Events().Create(ctx, events.CreateRecord{
			CalendarID:    calendar.CalendarID,
			CreatorUserID: owner.UserID,
			Title:         "standup",
			StartTime:     start,
			EndTime:       start.Add(30 * time.Minute),
		})
		require.NoError(t, err)

		require.NoError(t, repo.Calendars().Delete(ctx, calendar.CalendarID))

		_, err = repo.Events().GetByID(ctx, event.EventID)
		require.ErrorIs(t, err, events.ErrNotFound)

		require.ErrorIs(t, repo.Calendars().Delete(ctx, calendar.CalendarID), calendars.ErrNotFound)
	})

	t.Run("events ordered by start time", func(t *testing.T) {
		owner, err := repo.Users().Create(ctx, "erin", "key-erin")
		require.NoError(t, err)

		calendar, err := repo.Calendars().Create(ctx, calendars.CreateRecord{
			OwnerUserID: owner.UserID,
			Name:        "agenda",
		})
		require.NoError(t, err)

		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
			_, err := repo.Events().Create(ctx, events.CreateRecord{
				CalendarID:    calendar.CalendarID,
				CreatorUserID: owner.UserID,
				Title:         "slot",
				StartTime:     base.Add(offset),
				EndTime:       base.Add(offset + 30*time.Minute),
			})
			require.NoError(t, err)
		}

		listed, err := repo.Events().ListByCalendar(ctx, calendar.CalendarID)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		for i := 1; i < len(listed); i++ {
			require.False(t, listed[i].StartTime.Before(listed[i-1].StartTime))
		}
	})

	t.Run("event partial update", func(t *testing.T) {
		owner, err := repo.Users().Create(ctx, "frank", "key-frank")
		require.NoError(t, err)

		calendar, err := repo.Calendars().Create(ctx, calendars.CreateRecord{
			OwnerUserID: owner.UserID,
			Name:        "cal",
		})
		require.NoError(t, err)

		start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		description := "daily sync"
		event, err := repo.Events().Create(ctx, events.CreateRecord{
			CalendarID:    calendar.CalendarID,
			CreatorUserID: owner.UserID,
			Title:         "standup",
			Description:   &description,
			StartTime:     start,
			EndTime:       start.Add(30 * time.Minute),
		})
		require.NoError(t, err)

		title := "renamed"
		updated, err := repo.Events().Update(ctx, event.EventID, events.UpdateRecord{Title: &title})
		require.NoError(t, err)
		require.Equal(t, "renamed", updated.Title)
		require.NotNil(t, updated.Description)
		require.Equal(t, description, *updated.Description)
		require.True(t, updated.StartTime.Equal(event.StartTime))
	})
}
