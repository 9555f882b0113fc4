package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned by Submit before Start or after Stop.
	ErrSchedulerNotRunning = errors.New("warm-up scheduler stopped")

	// ErrJobQueueFull is returned when no queue slot is free for a warm-up job.
	ErrJobQueueFull = errors.New("warm-up queue full")

	// ErrInvalidConfig wraps every rejected scheduler or trigger setting.
	ErrInvalidConfig = errors.New("invalid warm-up configuration")
)
