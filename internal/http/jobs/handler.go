package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/settler/internal/scheduler"
)

// Runner triggers registered jobs by name.
type Runner interface {
	Jobs() []string
	RunNow(ctx context.Context, name string) (any, error)
}

type Handler struct {
	runner  Runner
	limiter *rate.Limiter
}

// NewHandler builds the jobs handler. A nil limiter leaves manual runs unthrottled.
func NewHandler(runner Runner, limiter *rate.Limiter) *Handler {
	return &Handler{runner: runner, limiter: limiter}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.With(h.throttle).Post("/{job}/run", h.run)
}

func (h *Handler) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter != nil && !h.limiter.Allow() {
			slog.Warn("manual job run throttled", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, r)
	})
}

type listResponse struct {
	Jobs []string `json:"jobs"`
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(listResponse{Jobs: h.runner.Jobs()}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type runResponse struct {
	Job    string `json:"job"`
	Result any    `json:"result"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "job")

	result, err := h.runner.RunNow(r.Context(), name)
	if err != nil {
		if errors.Is(err, scheduler.ErrUnknownJob) {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(runResponse{Job: name, Result: result}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
