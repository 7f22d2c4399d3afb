package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
)
