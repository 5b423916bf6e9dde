package uniqip

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/hupe1980/uniqip/key"
	"github.com/hupe1980/uniqip/merge"
	"github.com/hupe1980/uniqip/run"
)

// cancelCheckInterval is how many merged records pass between context checks
// in the counting loop.
const cancelCheckInterval = 1 << 20

// countUnique folds the k-way merge of the final run set into a distinct
// count. The merge emits keys in globally ascending order, so equal keys are
// always adjacent and a single previous-key slot suffices for exact
// deduplication.
//
// An empty run set counts zero without opening any file.
func (c *Counter) countUnique(ctx context.Context, runs []run.Run) (uint64, error) {
	if len(runs) == 0 {
		return 0, nil
	}

	start := time.Now()
	distinct, err := c.foldDistinct(ctx, runs)
	c.opts.metrics.RecordCount(distinct, time.Since(start), err)
	c.opts.logger.LogCount(ctx, len(runs), distinct, err)
	if err != nil {
		return 0, err
	}

	return distinct, nil
}

func (c *Counter) foldDistinct(ctx context.Context, runs []run.Run) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	readers, sources, err := c.openRuns(ctx, runs)
	if err != nil {
		return 0, err
	}
	defer closeRuns(readers)

	m, err := merge.New(sources)
	if err != nil {
		return 0, err
	}

	var (
		prev     key.Key
		have     bool
		distinct uint64
		emitted  int64
	)

	for {
		k, err := m.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}

		if !have || key.Compare(prev, k) != 0 {
			distinct++
			prev = k
			have = true
		}

		emitted++
		if emitted%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
	}

	return distinct, nil
}
