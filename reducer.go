package uniqip

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/uniqip/merge"
	"github.com/hupe1980/uniqip/run"
)

// reduceRuns merges the run set generation by generation until it fits within
// the fan-in, so the counting stage never needs more than fan-in open files.
//
// Each generation partitions the current runs into consecutive batches of at
// most fan-in and merges every batch into one new run. Batches of one
// generation may merge concurrently on the worker pool; generations are
// strictly sequential. A batch's input runs are deleted only after its merged
// output is durable (fsynced file and directory), which bounds disk usage
// without risking records on a crash mid-pass.
func (c *Counter) reduceRuns(ctx context.Context, ws *workspace, runs []run.Run) ([]run.Run, error) {
	fanIn := c.opts.fanIn

	// A fan-in of 1 could only copy runs one by one and would never converge,
	// so a merge always takes at least two runs. The loop condition still
	// reduces the run set to the configured fan-in.
	width := max(fanIn, 2)

	for level := 0; len(runs) > fanIn; level++ {
		numBatches := (len(runs) + width - 1) / width
		next := make([]run.Run, numBatches)

		g, gctx := errgroup.WithContext(ctx)
		for b := 0; b < numBatches; b++ {
			b := b
			batch := runs[b*width : min((b+1)*width, len(runs))]
			outPath := ws.mergePath(level, b)

			if err := c.rc.AcquireWorker(gctx); err != nil {
				_ = g.Wait()
				return nil, err
			}
			g.Go(func() error {
				defer c.rc.ReleaseWorker()

				out, err := c.mergeBatch(gctx, outPath, batch)
				if err != nil {
					return err
				}
				next[b] = out

				// The merged output is durable; free the inputs now rather
				// than at generation end, to bound disk usage. Failure to
				// unlink is a cleanup problem, not a data problem.
				for _, in := range batch {
					if err := in.Remove(); err != nil {
						c.opts.logger.WarnContext(gctx, "failed to remove merged input run",
							"run", in.Path,
							"error", err,
						)
					}
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		c.opts.logger.LogReducePass(ctx, level, len(runs), numBatches)
		runs = next
	}

	return runs, nil
}

// mergeBatch merges the given runs record-preservingly into one new durable
// run at outPath. No deduplication happens here; the output holds exactly the
// records of its inputs.
func (c *Counter) mergeBatch(ctx context.Context, outPath string, inputs []run.Run) (run.Run, error) {
	start := time.Now()
	out, err := c.mergeToFile(ctx, outPath, inputs)
	c.opts.metrics.RecordMerge(len(inputs), out.Records, time.Since(start), err)
	c.opts.logger.LogMerge(ctx, outPath, len(inputs), out.Records, err)
	return out, err
}

func (c *Counter) mergeToFile(ctx context.Context, outPath string, inputs []run.Run) (run.Run, error) {
	readers, sources, err := c.openRuns(ctx, inputs)
	if err != nil {
		return run.Run{}, err
	}
	defer closeRuns(readers)

	m, err := merge.New(sources)
	if err != nil {
		return run.Run{}, err
	}

	w, err := run.NewWriter(ctx, outPath, func(o *run.WriterOptions) {
		o.Compress = c.opts.compress
		o.Sync = true
		o.Controller = c.rc
	})
	if err != nil {
		return run.Run{}, err
	}

	for {
		k, err := m.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Abort()
			return run.Run{}, err
		}
		if err := w.WriteKey(k); err != nil {
			w.Abort()
			return run.Run{}, err
		}
	}

	return w.Close()
}

// openRuns opens all runs of one batch for sequential reading.
func (c *Counter) openRuns(ctx context.Context, inputs []run.Run) ([]*run.Reader, []merge.Source, error) {
	readers := make([]*run.Reader, 0, len(inputs))
	sources := make([]merge.Source, 0, len(inputs))

	for _, in := range inputs {
		r, err := run.Open(ctx, in.Path, func(o *run.ReaderOptions) {
			o.Compressed = c.opts.compress
			o.Controller = c.rc
		})
		if err != nil {
			closeRuns(readers)
			return nil, nil, err
		}
		readers = append(readers, r)
		sources = append(sources, r)
	}

	return readers, sources, nil
}

func closeRuns(readers []*run.Reader) {
	for _, r := range readers {
		_ = r.Close()
	}
}
