package reservation_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/settler/internal/reservation"
)

func TestUsage_Apply(t *testing.T) {
	tests := []struct {
		name       string
		usedAmount string
		usedCount  int64
		release    string
		count      int64
		wantAmount string
		wantCount  int64
	}{
		{name: "Exact", usedAmount: "500", usedCount: 1, release: "500", count: 1, wantAmount: "0", wantCount: 0},
		{name: "Partial", usedAmount: "1000.50", usedCount: 4, release: "0.50", count: 1, wantAmount: "1000", wantCount: 3},
		{name: "Floor", usedAmount: "100", usedCount: 0, release: "500", count: 2, wantAmount: "0", wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := reservation.Usage{AmountUsed: decimal.RequireFromString(tt.usedAmount), TxnCount: tt.usedCount}

			got := u.Apply(reservation.Release{Amount: decimal.RequireFromString(tt.release), Count: tt.count})

			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.AmountUsed), "got %s", got.AmountUsed)
			assert.Equal(t, tt.wantCount, got.TxnCount)
		})
	}
}

func TestGroupReleases(t *testing.T) {
	a := reservation.Bucket{MerchantID: "m-1", Provider: "jazzcash", Period: "DAILY", WindowStart: window}
	b := a
	b.Period = "MONTHLY"

	// Same instant in another zone is the same bucket.
	aElsewhere := a
	aElsewhere.WindowStart = window.In(time.FixedZone("PKT", 5*60*60))

	got := reservation.GroupReleases([]reservation.Reservation{
		{ID: uuid.New(), Bucket: a, Amount: decimal.RequireFromString("10")},
		{ID: uuid.New(), Bucket: b, Amount: decimal.RequireFromString("7")},
		{ID: uuid.New(), Bucket: aElsewhere, Amount: decimal.RequireFromString("2.5")},
	})

	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].Bucket)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got[0].Amount))
	assert.Equal(t, int64(2), got[0].Count)
	assert.Equal(t, b, got[1].Bucket)
	assert.Equal(t, int64(1), got[1].Count)

	assert.Empty(t, reservation.GroupReleases(nil))
}
