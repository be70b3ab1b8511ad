package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/settler/internal/reservation"
)

type Reader interface {
	GetReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
}

type Handler struct {
	reservations Reader
}

func NewHandler(reservations Reader) *Handler {
	return &Handler{reservations: reservations}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
}

type reservationResponse struct {
	ID          uuid.UUID          `json:"id"`
	MerchantID  string             `json:"merchant_id"`
	Provider    string             `json:"provider"`
	Period      string             `json:"period"`
	WindowStart time.Time          `json:"window_start"`
	Amount      decimal.Decimal    `json:"amount"`
	Status      reservation.Status `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	res, err := h.reservations.GetReservation(r.Context(), id)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			http.Error(w, "reservation not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(reservationResponse{
		ID:          res.ID,
		MerchantID:  res.Bucket.MerchantID,
		Provider:    res.Bucket.Provider,
		Period:      res.Bucket.Period,
		WindowStart: res.Bucket.WindowStart,
		Amount:      res.Amount,
		Status:      res.Status,
		CreatedAt:   res.CreatedAt,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
