package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// RootUsername is the reserved principal name for the bootstrap admin.
const RootUsername = "root"

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   uuid.UUID
	Username string
}

// IsPersisted reports whether the principal is backed by a stored user row.
// A synthesized bootstrap root principal has a nil UserID.
func (p Principal) IsPersisted() bool {
	return p.UserID != uuid.Nil
}

// PrincipalStore resolves presented credentials against stored users.
type PrincipalStore interface {
	LookupByAccessKey(ctx context.Context, key string) (*Principal, error)
	LookupByUsername(ctx context.Context, username string) (*Principal, error)
}

// ErrNoPrincipal is returned by stores when no user matches the lookup.
var ErrNoPrincipal = errors.New("no matching principal")

var (
	ErrMissingAPIKey = errors.New("missing api key")
	ErrInvalidAPIKey = errors.New("invalid api key")
)

// Resolve maps a presented access key to a principal. Resolution performs
// at most one store lookup per request and never caches results.
//
// The bootstrap key, when configured and matched, resolves to the stored
// root user if one exists, otherwise to an in-memory root principal. The
// seeding of a persistent root row is a startup concern, not handled here.
func Resolve(ctx context.Context, store PrincipalStore, presented string, bootstrapKey string) (*Principal, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, ErrMissingAPIKey
	}
	if !utf8.ValidString(presented) {
		return nil, ErrInvalidAPIKey
	}
	if store == nil {
		return nil, ErrInvalidAPIKey
	}

	if bootstrapKey != "" && presented == bootstrapKey {
		root, err := store.LookupByUsername(ctx, RootUsername)
		if err == nil && root != nil {
			return root, nil
		}
		if err != nil && !errors.Is(err, ErrNoPrincipal) {
			return nil, fmt.Errorf("lookup root principal: %w", err)
		}
		return &Principal{Username: RootUsername}, nil
	}

	principal, err := store.LookupByAccessKey(ctx, presented)
	if err != nil {
		if errors.Is(err, ErrNoPrincipal) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("lookup access key: %w", err)
	}
	return principal, nil
}

// GenerateAccessKey produces a new opaque access key: 32 bytes of
// cryptographic randomness, base64url encoded. The key is shown to the
// user exactly once at creation and is not recoverable afterwards.
func GenerateAccessKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate access key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
