package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"

	settlerHttp "github.com/MrJamesThe3rd/settler/internal/http"
	"github.com/MrJamesThe3rd/settler/internal/http/jobs"
	"github.com/MrJamesThe3rd/settler/internal/http/report"
	"github.com/MrJamesThe3rd/settler/internal/http/reservation"
	"github.com/MrJamesThe3rd/settler/internal/metrics"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type noJobs struct{}

func (noJobs) Jobs() []string { return nil }

func (noJobs) RunNow(context.Context, string) (any, error) { return nil, nil }

func newRouter(db settlerHttp.Pinger, corsOrigins ...string) http.Handler {
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	return settlerHttp.New(
		db,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		corsOrigins,
		jobs.NewHandler(noJobs{}, nil),
		report.NewHandler(nil),
		reservation.NewHandler(nil),
	)
}

func TestRouter_Healthz(t *testing.T) {
	tests := []struct {
		name     string
		db       pinger
		wantCode int
	}{
		{name: "Healthy", db: pinger{}, wantCode: http.StatusOK},
		{name: "DatabaseDown", db: pinger{err: errors.New("connection refused")}, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(tt.db).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(pinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "settler_reservations_expired_total")
}

func TestRouter_JobRunRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(pinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs/settle/run", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"job":"settle","result":null}`, rec.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://ops.example.com")

	t.Run("Disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(pinger{}).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("AllowedOrigin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(pinger{}, "https://ops.example.com").ServeHTTP(rec, req)

		assert.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
