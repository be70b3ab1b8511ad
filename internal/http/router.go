package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/settler/internal/http/jobs"
	"github.com/MrJamesThe3rd/settler/internal/http/report"
	"github.com/MrJamesThe3rd/settler/internal/http/reservation"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// New builds the ops router. CORS headers are only sent when corsOrigins is non-empty.
func New(
	db Pinger,
	metrics http.Handler,
	corsOrigins []string,
	jobsV1 *jobs.Handler,
	reportsV1 *report.Handler,
	reservationsV1 *reservation.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if len(corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	router.Get("/healthz", healthz(db))
	router.Handle("/metrics", metrics)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/jobs", jobsV1.Routes)
		r.Route("/settlements", reportsV1.Routes)
		r.Route("/reservations", reservationsV1.Routes)
	})

	return router
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)

			return
		}

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}
}
