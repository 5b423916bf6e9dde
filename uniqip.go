package uniqip

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/uniqip/resource"
)

// Counter is the external-sort distinct counter. It is configured once via
// New and may be reused for multiple inputs; each CountDistinct invocation
// runs in its own scoped workspace.
type Counter struct {
	opts options
	rc   *resource.Controller
}

// New creates a Counter.
func New(optFns ...Option) (*Counter, error) {
	opts := applyOptions(optFns)

	if opts.batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}
	if opts.fanIn <= 0 {
		return nil, ErrInvalidFanIn
	}
	if opts.workers < 0 {
		return nil, ErrInvalidWorkers
	}

	rc := resource.NewController(resource.Config{
		MaxWorkers:         int64(opts.workers),
		IOLimitBytesPerSec: opts.ioLimit,
	})

	return &Counter{opts: opts, rc: rc}, nil
}

// CountDistinct reads one address per line from input and returns the number
// of distinct addresses. If output is non-nil the count is also written to it
// as a decimal integer with a trailing newline, only after the full count has
// been produced.
//
// The pipeline is: encode lines to 16-byte keys, sort bounded batches into
// on-disk runs, reduce the run set to at most fan-in runs with
// record-preserving merge passes, then fold the final k-way merge into a
// distinct count via previous-key comparison.
func (c *Counter) CountDistinct(ctx context.Context, input io.Reader, output io.Writer) (uint64, error) {
	ws, err := newWorkspace(c.opts.workspaceDir)
	if err != nil {
		return 0, fmt.Errorf("create workspace: %w", err)
	}
	defer func() {
		if c.opts.keepWorkspace {
			c.opts.logger.InfoContext(ctx, "workspace kept", "dir", ws.dir)
			return
		}
		c.opts.logger.LogWorkspaceCleanup(ctx, ws.dir, ws.remove())
	}()

	runs, err := c.buildRuns(ctx, ws, input)
	if err != nil {
		return 0, err
	}

	runs, err = c.reduceRuns(ctx, ws, runs)
	if err != nil {
		return 0, err
	}

	distinct, err := c.countUnique(ctx, runs)
	if err != nil {
		return 0, err
	}

	if output != nil {
		if _, err := fmt.Fprintf(output, "%d\n", distinct); err != nil {
			return 0, fmt.Errorf("write result: %w", err)
		}
	}

	return distinct, nil
}

// CountDistinctFile counts distinct addresses in the file at inputPath and
// writes the count to outputPath. The output file is only created after the
// count has been fully produced; a failed pipeline leaves no output behind.
func (c *Counter) CountDistinctFile(ctx context.Context, inputPath, outputPath string) (uint64, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	distinct, err := c.CountDistinct(ctx, in, nil)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	if _, err := fmt.Fprintf(out, "%d\n", distinct); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}

	return distinct, nil
}
