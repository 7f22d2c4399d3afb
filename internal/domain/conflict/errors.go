package conflict

import "errors"

// Sentinel kinds for conflict resolution errors.
var (
	ErrNoClaims = errors.New("no open claims for official participant")
)
