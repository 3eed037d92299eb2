// Package internal documents the calendar server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, rendering, and routing
// - domain: business logic and domain models (users, calendars, events)
// - storage: database access and repositories (pgx + Postgres)
// - auth, config, metrics, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
