package commission

import "errors"

// ErrInvalidTerms is returned for terms with an unknown mode or a negative rate.
var ErrInvalidTerms = errors.New("commission: invalid merchant terms")
