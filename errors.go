package uniqip

import "errors"

var (
	// ErrInvalidBatchSize is returned by New when the batch size is not
	// positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidFanIn is returned by New when the fan-in is not positive.
	ErrInvalidFanIn = errors.New("fan-in must be positive")

	// ErrInvalidWorkers is returned by New when the worker count is negative.
	ErrInvalidWorkers = errors.New("worker count must not be negative")
)
