// Package users manages user accounts and their opaque access keys.
//
// Usernames are case-normalized to lowercase before storage and unique
// across the system. Access keys are generated once at creation (or via an
// explicit rotation) and are returned to the caller exactly once; they are
// never recoverable afterwards.
package users

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridian-cal/server/internal/auth"
	"github.com/meridian-cal/server/internal/validation"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type Service struct {
	repo     Repository
	logger   zerolog.Logger
	validate *validator.Validate
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	v := validator.New()
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &Service{
		repo:     repo,
		logger:   logger.With().Str("component", "users").Logger(),
		validate: v,
	}
}

type CreateParams struct {
	Username string `validate:"required,min=1,max=255,username_chars"`
}

// Create registers a new user and generates their access key. The returned
// User carries the plaintext key; this is the only time it is visible.
func (s *Service) Create(ctx context.Context, params CreateParams) (*User, error) {
	params.Username = strings.ToLower(strings.TrimSpace(params.Username))
	if err := s.validate.Struct(params); err != nil {
		return nil, validation.FromValidator(err)
	}

	accessKey, err := auth.GenerateAccessKey()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, params.Username, accessKey)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.UserID.String()).
		Str("username", user.Username).
		Msg("user created")
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// OwnedCalendarIDs lists the ids of calendars owned by the given user.
func (s *Service) OwnedCalendarIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.OwnedCalendarIDs(ctx, id)
}

// RotateAccessKey replaces a user's access key and returns the new
// plaintext key once. The previous key stops working immediately.
func (s *Service) RotateAccessKey(ctx context.Context, username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	accessKey, err := auth.GenerateAccessKey()
	if err != nil {
		return "", err
	}
	if _, err := s.repo.UpdateAccessKey(ctx, user.UserID, accessKey); err != nil {
		return "", fmt.Errorf("rotate access key: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.UserID.String()).
		Str("username", user.Username).
		Msg("access key rotated")
	return accessKey, nil
}
