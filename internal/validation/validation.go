// Package validation carries schema-level payload validation failures
// across the domain/transport boundary so handlers can render them as 422
// responses with per-field detail.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error describes a rejected payload. Fields maps a field name to the
// reason it was rejected.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "invalid payload"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, reason := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, reason))
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}

// NewError builds a single-field validation error.
func NewError(field, reason string) *Error {
	return &Error{Fields: map[string]string{field: reason}}
}

// FromValidator converts a go-playground/validator error into *Error.
// Non-validator errors pass through unchanged.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = reasonForTag(fe)
	}
	return &Error{Fields: fields}
}

func reasonForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "username_chars":
		return "may only contain letters, digits, hyphens and underscores"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
