package view

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/settler/internal/reservation"
	"github.com/MrJamesThe3rd/settler/internal/settlement"
)

// SettleSummary renders a settlement run for the result screen.
func SettleSummary(res *settlement.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tasks completed:   %d\n", res.TasksClaimed)
	fmt.Fprintf(&b, "Already settled:   %d\n", res.StaleTasks)
	fmt.Fprintf(&b, "Merchants settled: %d\n", res.MerchantsSettled)

	if len(res.SkippedMerchants) > 0 {
		fmt.Fprintf(&b, "Skipped (no terms): %s\n", strings.Join(res.SkippedMerchants, ", "))
	}

	for _, r := range res.Reports {
		fmt.Fprintf(&b, "\n  %-24s %4d txns  net %s", r.MerchantID, r.TransactionCount, FormatAmount(r.MerchantAmount))

		if !r.DeductionApplied.IsZero() {
			fmt.Fprintf(&b, "  (deduction %s)", FormatAmount(r.DeductionApplied))
		}
	}

	return b.String()
}

// SweepSummary renders a reservation sweep for the result screen.
func SweepSummary(res *reservation.SweepResult) string {
	return fmt.Sprintf(
		"Candidates: %d\nExpired:    %d\nRaced:      %d\nBuckets:    %d",
		res.Candidates, res.Expired, res.Raced, res.Buckets,
	)
}

func reservationTotal(rs []reservation.Reservation) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rs {
		total = total.Add(r.Amount)
	}

	return total
}
