package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/meridian-cal/server/internal/api/problem"
	"github.com/meridian-cal/server/internal/auth"
	"github.com/meridian-cal/server/internal/metrics"
)

type contextKeyPrincipal string

const principalKey contextKeyPrincipal = "principal"

// APIKeyAuth resolves the access key carried in the configured header to
// a principal and attaches it to the request context. Resolution happens
// on every request; principals are never cached across requests.
func APIKeyAuth(store auth.PrincipalStore, header, bootstrapKey, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.Resolve(r.Context(), store, r.Header.Get(header), bootstrapKey)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingAPIKey):
					metrics.AuthFailuresTotal.WithLabelValues("missing").Inc()
					problem.Write(w, r, http.StatusUnauthorized, "https://meridian-cal.dev/problems/unauthorized", "Missing API key", err, env)
				case errors.Is(err, auth.ErrInvalidAPIKey):
					metrics.AuthFailuresTotal.WithLabelValues("invalid").Inc()
					problem.Write(w, r, http.StatusUnauthorized, "https://meridian-cal.dev/problems/unauthorized", "Invalid API key", err, env)
				default:
					problem.Write(w, r, http.StatusInternalServerError, "https://meridian-cal.dev/problems/server-error", "Server error", err, env)
				}
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentPrincipal returns the principal resolved for the request, if any.
func CurrentPrincipal(r *http.Request) *auth.Principal {
	if r == nil {
		return nil
	}
	if principal, ok := r.Context().Value(principalKey).(*auth.Principal); ok {
		return principal
	}
	return nil
}
