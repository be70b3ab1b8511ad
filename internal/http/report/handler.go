package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/settler/internal/settlement"
)

// Reader loads a merchant's ledger row for one business day. It returns nil
// without error when the day has not been settled.
type Reader interface {
	GetReport(ctx context.Context, merchantID string, day time.Time) (*settlement.Report, error)
}

type Handler struct {
	reports Reader
}

func NewHandler(reports Reader) *Handler {
	return &Handler{reports: reports}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{merchantID}/{date}", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantID")

	day, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	report, err := h.reports.GetReport(r.Context(), merchantID, day)
	if err != nil {
		slog.Error("failed to get settlement report", "merchant_id", merchantID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if report == nil {
		http.Error(w, "settlement report not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(report)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
