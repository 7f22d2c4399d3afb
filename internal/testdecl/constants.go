package testdecl

import "time"

// HTTP status codes used by the test tool.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Timing constants.
const (
	ProcessingDelay      = 3 * time.Second
	PercentageMultiplier = 100.0
)
