// Package worker binds the settlement and reservation services to the scheduler.
package worker

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/settler/internal/metrics"
	"github.com/MrJamesThe3rd/settler/internal/reservation"
	"github.com/MrJamesThe3rd/settler/internal/scheduler"
	"github.com/MrJamesThe3rd/settler/internal/settlement"
)

const (
	JobSettle             = "settle"
	JobExpireReservations = "expire-reservations"
)

type Settler interface {
	SettleDueTasks(ctx context.Context, now time.Time) (*settlement.RunResult, error)
}

type Sweeper interface {
	ExpireOldReservations(ctx context.Context, now time.Time) (*reservation.SweepResult, error)
}

type Intervals struct {
	Settle time.Duration
	Sweep  time.Duration
}

// SettleSummary is the JSON form of a settlement run.
type SettleSummary struct {
	TasksClaimed     int             `json:"tasksClaimed"`
	StaleTasks       int             `json:"staleTasks"`
	MerchantsSettled int             `json:"merchantsSettled"`
	SkippedMerchants []string        `json:"skippedMerchants"`
	Merchants        []MerchantDelta `json:"merchants"`
}

type MerchantDelta struct {
	MerchantID       string `json:"merchantId"`
	SettlementDate   string `json:"settlementDate"`
	TransactionCount int64  `json:"transactionCount"`
	MerchantAmount   string `json:"merchantAmount"`
	DeductionApplied string `json:"deductionApplied"`
}

// Jobs returns the scheduler jobs for the two services. m may be nil.
func Jobs(settler Settler, sweeper Sweeper, every Intervals, m *metrics.Metrics) []scheduler.Job {
	return []scheduler.Job{
		{
			Name:     JobSettle,
			Interval: every.Settle,
			Run: func(ctx context.Context, now time.Time) (any, error) {
				res, err := settler.SettleDueTasks(ctx, now)
				if err != nil {
					return nil, err
				}

				recordSettle(m, res)

				return summarize(res), nil
			},
		},
		{
			Name:     JobExpireReservations,
			Interval: every.Sweep,
			Run: func(ctx context.Context, now time.Time) (any, error) {
				res, err := sweeper.ExpireOldReservations(ctx, now)
				if err != nil {
					return nil, err
				}

				if m != nil {
					m.ReservationsExpired.Add(float64(res.Expired))
					m.ReservationsRaced.Add(float64(res.Raced))
				}

				return res, nil
			},
		},
	}
}

func recordSettle(m *metrics.Metrics, res *settlement.RunResult) {
	if m == nil {
		return
	}

	m.TasksSettled.Add(float64(res.TasksClaimed))
	m.MerchantsSkipped.Add(float64(len(res.SkippedMerchants)))

	for _, r := range res.Reports {
		if !r.DeductionApplied.IsZero() {
			m.DeductionsApplied.Inc()
		}
	}
}

func summarize(res *settlement.RunResult) SettleSummary {
	s := SettleSummary{
		TasksClaimed:     res.TasksClaimed,
		StaleTasks:       res.StaleTasks,
		MerchantsSettled: res.MerchantsSettled,
		SkippedMerchants: res.SkippedMerchants,
		Merchants:        make([]MerchantDelta, len(res.Reports)),
	}

	for i, r := range res.Reports {
		s.Merchants[i] = MerchantDelta{
			MerchantID:       r.MerchantID,
			SettlementDate:   r.SettlementDate.Format(time.DateOnly),
			TransactionCount: r.TransactionCount,
			MerchantAmount:   r.MerchantAmount.String(),
			DeductionApplied: r.DeductionApplied.String(),
		}
	}

	return s
}
