package ingest

import "errors"

// Common errors returned by the ingest handler.
var (
	// ErrPoolStopped is returned when work is submitted to a stopped pool.
	ErrPoolStopped = errors.New("worker pool is stopped")
)
