package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "settler"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics bundles the worker's job metrics.
type Metrics struct {
	JobRuns             *prometheus.CounterVec
	JobDuration         *prometheus.HistogramVec
	TasksSettled        prometheus.Counter
	MerchantsSkipped    prometheus.Counter
	DeductionsApplied   prometheus.Counter
	ReservationsExpired prometheus.Counter
	ReservationsRaced   prometheus.Counter
}

// New constructs the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Total job runs by job and result",
			},
			[]string{"job", "result"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Job run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		TasksSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_tasks_completed_total",
			Help:      "Scheduled tasks completed by settlement runs",
		}),
		MerchantsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_merchants_skipped_total",
			Help:      "Merchants skipped for missing or invalid financial terms",
		}),
		DeductionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_deductions_applied_total",
			Help:      "Merchant settlements that carried a non-zero deduction",
		}),
		ReservationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_expired_total",
			Help:      "Reservations transitioned from PENDING to EXPIRED",
		}),
		ReservationsRaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_raced_total",
			Help:      "Expiry candidates that changed state before the sweep updated them",
		}),
	}

	reg.MustRegister(
		m.JobRuns,
		m.JobDuration,
		m.TasksSettled,
		m.MerchantsSkipped,
		m.DeductionsApplied,
		m.ReservationsExpired,
		m.ReservationsRaced,
	)

	return m
}

// RegisterDB exposes connection pool statistics for db.
func RegisterDB(reg prometheus.Registerer, db *sql.DB, name string) {
	reg.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// ObserveRun records one job run.
func (m *Metrics) ObserveRun(job string, seconds float64, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}

	m.JobRuns.WithLabelValues(job, result).Inc()
	m.JobDuration.WithLabelValues(job).Observe(seconds)
}
