package repository

import "errors"

// Sentinel kinds for sponsorship store errors.
var (
	ErrNotFound = errors.New("sponsorship not found")
)
