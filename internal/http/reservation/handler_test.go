package reservation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reservationHandler "github.com/MrJamesThe3rd/settler/internal/http/reservation"
	"github.com/MrJamesThe3rd/settler/internal/reservation"
)

type fakeReader map[uuid.UUID]*reservation.Reservation

func (f fakeReader) GetReservation(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if id == uuid.Nil {
		return nil, errors.New("connection reset by peer")
	}

	r, ok := f[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}

	return r, nil
}

func TestHandler_Get(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 10, 16, 11, 29, 0, 0, time.UTC)

	reader := fakeReader{id: {
		ID: id,
		Bucket: reservation.Bucket{
			MerchantID:  "m-1",
			Provider:    "jazzcash",
			Period:      "DAILY",
			WindowStart: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		},
		Amount:    decimal.RequireFromString("500"),
		Status:    reservation.StatusExpired,
		CreatedAt: created,
	}}

	r := chi.NewRouter()
	r.Route("/reservations", reservationHandler.NewHandler(reader).Routes)

	t.Run("Found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/"+id.String(), nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "EXPIRED", body["status"])
		assert.Equal(t, "500", body["amount"])
		assert.Equal(t, "m-1", body["merchant_id"])
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("StoreError", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations/"+uuid.Nil.String(), nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
