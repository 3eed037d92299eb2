package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/meridian-cal/server/internal/api/handlers"
	"github.com/meridian-cal/server/internal/api/middleware"
	"github.com/meridian-cal/server/internal/config"
	"github.com/meridian-cal/server/internal/domain/calendars"
	"github.com/meridian-cal/server/internal/domain/events"
	"github.com/meridian-cal/server/internal/domain/users"
	"github.com/meridian-cal/server/internal/metrics"
	"github.com/meridian-cal/server/internal/storage/postgres"
)

// NewRouter wires the full route table. Routes are registered once at
// startup; nothing is added or removed while the server is running.
func NewRouter(cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, version, gitCommit string) http.Handler {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		logger.Error().Err(err).Msg("repository init failed")
		return http.NewServeMux()
	}

	usersService := users.NewService(repo.Users(), logger)
	calendarsService := calendars.NewService(repo.Calendars(), logger)
	eventsService := events.NewService(repo.Events(), repo.Calendars(), logger)

	usersHandler := handlers.NewUsersHandler(usersService, cfg.Environment)
	calendarsHandler := handlers.NewCalendarsHandler(calendarsService, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventsService, cfg.Environment)
	healthChecker := handlers.NewHealthChecker(pool, version, gitCommit)

	apiKeyAuth := middleware.APIKeyAuth(repo.Principals(), cfg.Auth.APIKeyHeader, cfg.Auth.BootstrapAdminKey, cfg.Environment)

	mux := http.NewServeMux()
	mux.Handle("/health", healthChecker.Health())
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(pool))
	mux.Handle("/metrics", metrics.Handler())

	// User creation requires a credential like everything else; the
	// bootstrap admin key is how the first real user gets created.
	mux.Handle("/api/v1/users", instrument(apiKeyAuth(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(usersHandler.Create),
	}))))
	mux.Handle("/api/v1/users/me", instrument(apiKeyAuth(methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(usersHandler.Me),
	}))))

	mux.Handle("/api/v1/calendars", instrument(apiKeyAuth(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(calendarsHandler.Create),
		http.MethodGet:  http.HandlerFunc(calendarsHandler.List),
	}))))
	mux.Handle("/api/v1/calendars/{calendarID}", instrument(apiKeyAuth(methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(calendarsHandler.Get),
		http.MethodPatch:  http.HandlerFunc(calendarsHandler.Update),
		http.MethodDelete: http.HandlerFunc(calendarsHandler.Delete),
	}))))

	mux.Handle("/api/v1/calendars/{calendarID}/events", instrument(apiKeyAuth(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(eventsHandler.Create),
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
	}))))
	mux.Handle("/api/v1/calendars/{calendarID}/events/{eventID}", instrument(apiKeyAuth(methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPatch:  http.HandlerFunc(eventsHandler.Update),
		http.MethodDelete: http.HandlerFunc(eventsHandler.Delete),
	}))))

	handler := middleware.RequestLogging()(mux)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

// instrument wraps a handler with request metrics. Applied inside the
// mux so the matched route pattern is available for labels.
func instrument(next http.Handler) http.Handler {
	return metrics.HTTPMiddleware(next)
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
