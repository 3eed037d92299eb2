package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-cal/server/internal/auth"
)

// SeedRootUser ensures a persisted root user holding the bootstrap admin
// key. Safe under concurrent startups: the insert is a no-op when the
// root row already exists, so the username unique constraint never
// surfaces as an error here.
func SeedRootUser(ctx context.Context, pool *pgxpool.Pool, bootstrapKey string) error {
	if bootstrapKey == "" {
		return nil
	}
	_, err := pool.Exec(ctx, `
INSERT INTO users (username, access_key)
VALUES ($1, $2)
ON CONFLICT (username) DO NOTHING`, auth.RootUsername, bootstrapKey)
	if err != nil {
		return fmt.Errorf("seed root user: %w", err)
	}
	return nil
}
