// Package resource bounds the shared resources of the sort/merge pipeline:
// concurrent worker slots (which also bound peak file-descriptor usage, since
// every worker holds at most fan-in descriptors) and background IO throughput.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for one pipeline invocation.
type Config struct {
	// MaxWorkers is the maximum number of concurrent sort/flush or merge
	// jobs. If 0, defaults to 1 (sequential pipeline).
	MaxWorkers int64

	// IOLimitBytesPerSec caps the aggregate run-file IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages worker slots and IO budget for a pipeline run.
type Controller struct {
	workerSem *semaphore.Weighted
	ioLimiter *rate.Limiter

	workersBusy atomic.Int64
}

// NewController creates a controller from cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireWorker reserves a worker slot, blocking until one is free or ctx is
// canceled. A canceled context always fails, even if a slot is free.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.workerSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.workersBusy.Add(1)
	return nil
}

// ReleaseWorker returns a worker slot.
func (c *Controller) ReleaseWorker() {
	c.workersBusy.Add(-1)
	c.workerSem.Release(1)
}

// WorkersBusy returns the number of currently held worker slots.
func (c *Controller) WorkersBusy() int64 {
	return c.workersBusy.Load()
}

// AcquireIO waits until the IO limit allows bytes more bytes.
// A nil controller or an unlimited one returns immediately.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	// WaitN caps n at the limiter burst; split large requests.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// Limited reports whether an IO limit is configured.
func (c *Controller) Limited() bool {
	return c != nil && c.ioLimiter != nil
}
