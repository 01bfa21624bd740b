package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrCheckInProgress is returned by RunOnce while another check is running
	ErrCheckInProgress = errors.New("consistency check already in progress")
)
