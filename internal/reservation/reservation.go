package reservation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a quota reservation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusExpired   Status = "EXPIRED"
)

// Bucket identifies one merchant_limit_usage counter row.
type Bucket struct {
	MerchantID  string
	Provider    string
	Period      string
	WindowStart time.Time
}

// Reservation is a tentative hold against a merchant's quota bucket.
type Reservation struct {
	ID        uuid.UUID
	Bucket    Bucket
	Amount    decimal.Decimal
	Status    Status
	CreatedAt time.Time
}

// Usage is the counter state of a bucket.
type Usage struct {
	Bucket     Bucket
	AmountUsed decimal.Decimal
	TxnCount   int64
}

// Release is the amount and count to give back to a bucket.
type Release struct {
	Bucket Bucket
	Amount decimal.Decimal
	Count  int64
}

// Apply returns the usage after r, floored at zero on both counters.
func (u Usage) Apply(r Release) Usage {
	u.AmountUsed = decimal.Max(u.AmountUsed.Sub(r.Amount), decimal.Zero)
	u.TxnCount = max(u.TxnCount-r.Count, 0)

	return u
}

// bucketKey is a comparable form of Bucket for grouping.
type bucketKey struct {
	merchantID  string
	provider    string
	period      string
	windowStart int64
}

func keyOf(b Bucket) bucketKey {
	return bucketKey{
		merchantID:  b.MerchantID,
		provider:    b.Provider,
		period:      b.Period,
		windowStart: b.WindowStart.UnixNano(),
	}
}

// GroupReleases sums expired reservations per bucket, in first-seen order.
func GroupReleases(expired []Reservation) []Release {
	var (
		index    = make(map[bucketKey]int)
		releases []Release
	)

	for _, r := range expired {
		k := keyOf(r.Bucket)

		i, ok := index[k]
		if !ok {
			i = len(releases)
			index[k] = i
			releases = append(releases, Release{Bucket: r.Bucket, Amount: decimal.Zero})
		}

		releases[i].Amount = releases[i].Amount.Add(r.Amount)
		releases[i].Count++
	}

	return releases
}
