package settlement

import "errors"

var (
	// ErrTermsNotFound is returned when a merchant has no financial terms on record.
	ErrTermsNotFound = errors.New("settlement: merchant terms not found")
	// ErrConcurrentClaim is returned when a guarded update touches fewer rows than
	// requested, meaning another run already claimed them.
	ErrConcurrentClaim = errors.New("settlement: rows already claimed by another run")
)
