package report

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/MrJamesThe3rd/settler/internal/settlement"
)

// CachedReader serves reports of closed business days from memory. A run only
// ever writes to the business day it runs in, so earlier days no longer change.
type CachedReader struct {
	next  Reader
	loc   *time.Location
	now   func() time.Time
	cache *cache.Cache
}

func NewCachedReader(next Reader, loc *time.Location, ttl time.Duration) *CachedReader {
	if loc == nil {
		loc = time.UTC
	}

	return &CachedReader{
		next:  next,
		loc:   loc,
		now:   time.Now,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedReader) GetReport(ctx context.Context, merchantID string, day time.Time) (*settlement.Report, error) {
	key := merchantID + "|" + day.Format(time.DateOnly)

	if v, ok := c.cache.Get(key); ok {
		return v.(*settlement.Report), nil
	}

	report, err := c.next.GetReport(ctx, merchantID, day)
	if err != nil || report == nil {
		return report, err
	}

	if c.closed(day) {
		c.cache.SetDefault(key, report)
	}

	return report, nil
}

// closed reports whether day is before the current business day.
func (c *CachedReader) closed(day time.Time) bool {
	today := settlement.BusinessDay(c.now(), c.loc).Format(time.DateOnly)
	return day.Format(time.DateOnly) < today
}
