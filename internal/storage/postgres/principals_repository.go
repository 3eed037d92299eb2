package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meridian-cal/server/internal/auth"
)

var _ auth.PrincipalStore = (*PrincipalRepository)(nil)

func (r *PrincipalRepository) LookupByAccessKey(ctx context.Context, key string) (*auth.Principal, error) {
	return r.lookup(ctx, `
SELECT user_id, username
  FROM users
 WHERE access_key = $1`, key)
}

func (r *PrincipalRepository) LookupByUsername(ctx context.Context, username string) (*auth.Principal, error) {
	return r.lookup(ctx, `
SELECT user_id, username
  FROM users
 WHERE username = $1`, username)
}

func (r *PrincipalRepository) lookup(ctx context.Context, sql string, arg any) (*auth.Principal, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, sql, arg)

	var principal auth.Principal
	if err := row.Scan(&principal.UserID, &principal.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNoPrincipal
		}
		return nil, fmt.Errorf("lookup principal: %w", err)
	}
	return &principal, nil
}
