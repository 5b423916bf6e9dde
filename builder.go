package uniqip

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/uniqip/key"
	"github.com/hupe1980/uniqip/run"
)

// buildRuns consumes the input line stream and produces the initial set of
// sorted runs. Batches are sorted and flushed on the worker pool while the
// next batch is being read; the returned run set is ordered by run index.
//
// Empty input yields an empty run set and touches no files.
func (c *Counter) buildRuns(ctx context.Context, ws *workspace, input io.Reader) ([]run.Run, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		mu   sync.Mutex
		runs []run.Run
	)

	// Submission blocks on a worker slot, which bounds both concurrency and
	// the number of batches held in memory at once.
	flush := func(batch []key.Key, idx int64) error {
		if err := c.rc.AcquireWorker(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			defer c.rc.ReleaseWorker()

			start := time.Now()
			r, err := c.flushRun(gctx, ws.runPath(idx), batch)
			c.opts.metrics.RecordFlush(len(batch), time.Since(start), err)
			c.opts.logger.LogFlush(gctx, ws.runPath(idx), len(batch), err)
			if err != nil {
				return err
			}

			mu.Lock()
			runs = append(runs, r)
			mu.Unlock()
			return nil
		})
		return nil
	}

	scanner := bufio.NewScanner(input)
	batch := make([]key.Key, 0, c.opts.batchSize)

	var (
		lineNo int
		runIdx int64
	)

	for scanner.Scan() {
		lineNo++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		k, err := key.EncodeAddr(text)
		if err != nil {
			encErr := &key.EncodeError{Line: lineNo, Input: text, Err: err}
			_ = g.Wait()
			return nil, encErr
		}

		batch = append(batch, k)
		if len(batch) >= c.opts.batchSize {
			if err := flush(batch, runIdx); err != nil {
				_ = g.Wait()
				return nil, err
			}
			runIdx++
			batch = make([]key.Key, 0, c.opts.batchSize)

			// A failed flush cancels gctx; stop reading.
			if gctx.Err() != nil {
				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		_ = g.Wait()
		return nil, fmt.Errorf("read input: %w", err)
	}

	if len(batch) > 0 && gctx.Err() == nil {
		if err := flush(batch, runIdx); err != nil {
			_ = g.Wait()
			return nil, err
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Flushes complete out of order; run names are zero-padded so path order
	// is run-index order.
	slices.SortFunc(runs, func(a, b run.Run) int {
		return strings.Compare(a.Path, b.Path)
	})

	return runs, nil
}

// flushRun sorts one batch in place and writes it as a new run.
func (c *Counter) flushRun(ctx context.Context, path string, batch []key.Key) (run.Run, error) {
	slices.SortFunc(batch, key.Compare)

	w, err := run.NewWriter(ctx, path, func(o *run.WriterOptions) {
		o.Compress = c.opts.compress
		o.Controller = c.rc
	})
	if err != nil {
		return run.Run{}, err
	}

	for _, k := range batch {
		if err := w.WriteKey(k); err != nil {
			w.Abort()
			return run.Run{}, err
		}
	}

	return w.Close()
}
