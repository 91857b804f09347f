package scheduler

import "errors"

var (
	// ErrNotRunning is returned when a control operation needs a running poller
	ErrNotRunning = errors.New("scheduler: poller is not running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("scheduler: invalid poller configuration")
)
