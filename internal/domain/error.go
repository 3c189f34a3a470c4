package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Collector failure kinds. Every adapter translates its provider's
	// failures into one of these before the orchestrator sees them.
	ErrRateLimited = errors.New("upstream rate limited")
	ErrUpstream    = errors.New("upstream call failed")
	ErrResolution  = errors.New("company identity could not be resolved")

	ErrJobTerminal = errors.New("job already in terminal state")
	ErrQueueFull   = errors.New("worker queue full")
)
