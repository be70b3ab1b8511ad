package reservation

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrUsageNotFound is returned when a bucket has no merchant_limit_usage row.
	ErrUsageNotFound = errors.New("usage bucket not found")
)
