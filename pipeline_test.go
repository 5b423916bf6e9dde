package uniqip

import (
	"context"
	"net/netip"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/uniqip/key"
	"github.com/hupe1980/uniqip/run"
)

// addrsInput renders keys as one textual address per line.
func addrsInput(keys []key.Key) string {
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(netip.AddrFrom16(k).String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func mustKeys(t *testing.T, addrs ...string) []key.Key {
	t.Helper()

	keys := make([]key.Key, len(addrs))
	for i, a := range addrs {
		k, err := key.EncodeAddr(a)
		require.NoError(t, err)
		keys[i] = k
	}
	return keys
}

func newTestCounter(t *testing.T, optFns ...Option) (*Counter, *workspace) {
	t.Helper()

	c, err := New(optFns...)
	require.NoError(t, err)

	ws, err := newWorkspace(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.remove() })

	return c, ws
}

func runContents(t *testing.T, c *Counter, r run.Run) []key.Key {
	t.Helper()

	rd, err := run.Open(context.Background(), r.Path, func(o *run.ReaderOptions) {
		o.Compressed = c.opts.compress
	})
	require.NoError(t, err)
	defer rd.Close()

	var keys []key.Key
	for i := int64(0); i < r.Records; i++ {
		k, err := rd.Next()
		require.NoError(t, err)
		keys = append(keys, k)
	}
	return keys
}

func TestBuildRunsSortsAndSplitsBatches(t *testing.T) {
	c, ws := newTestCounter(t, WithBatchSize(2), WithFanIn(2))
	ctx := context.Background()

	// Spec scenario: four keys, batch size two, so two sorted runs.
	keys := mustKeys(t, "::1", "::3", "::1", "::2")

	runs, err := c.buildRuns(ctx, ws, strings.NewReader(addrsInput(keys)))
	require.NoError(t, err)
	require.Len(t, runs, 2)

	require.Equal(t, mustKeys(t, "::1", "::3"), runContents(t, c, runs[0]))
	require.Equal(t, mustKeys(t, "::1", "::2"), runContents(t, c, runs[1]))

	// Already within fan-in: reduction is a no-op.
	reduced, err := c.reduceRuns(ctx, ws, runs)
	require.NoError(t, err)
	require.Equal(t, runs, reduced)

	distinct, err := c.countUnique(ctx, reduced)
	require.NoError(t, err)
	require.Equal(t, uint64(3), distinct)
}

func TestBuildRunsEmptyInput(t *testing.T) {
	c, ws := newTestCounter(t)

	runs, err := c.buildRuns(context.Background(), ws, strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, runs)

	// No run files are created for empty input.
	entries, err := os.ReadDir(ws.dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestBuildRunsSkipsBlankLines(t *testing.T) {
	c, ws := newTestCounter(t)

	input := "::1\n\n   \n::2\n"
	runs, err := c.buildRuns(context.Background(), ws, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, int64(2), runs[0].Records)
}

func TestBuildRunsReportsEncodeLine(t *testing.T) {
	c, ws := newTestCounter(t)

	input := "::1\nnot-an-address\n::2\n"
	_, err := c.buildRuns(context.Background(), ws, strings.NewReader(input))

	var encErr *key.EncodeError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, 2, encErr.Line)
	require.Equal(t, "not-an-address", encErr.Input)
}

func TestBuildRunsParallelWorkersKeepOrder(t *testing.T) {
	c, ws := newTestCounter(t, WithBatchSize(1), WithWorkers(8))

	keys := mustKeys(t,
		"::8", "::7", "::6", "::5", "::4", "::3", "::2", "::1",
		"::10", "::11", "::12", "::13", "::14", "::15", "::16", "::17",
	)

	runs, err := c.buildRuns(context.Background(), ws, strings.NewReader(addrsInput(keys)))
	require.NoError(t, err)
	require.Len(t, runs, len(keys))

	// Returned in run-index order regardless of flush completion order.
	for i, r := range runs {
		require.Equal(t, ws.runPath(int64(i)), r.Path)
		require.Equal(t, int64(1), r.Records)
	}
}

func TestReduceRunsPreservesRecords(t *testing.T) {
	c, ws := newTestCounter(t, WithBatchSize(3), WithFanIn(2))
	ctx := context.Background()

	keys := mustKeys(t,
		"::1", "::9", "::3", "::9", "::5", "::1",
		"::7", "::2", "::9", "::4", "::6",
	)

	runs, err := c.buildRuns(ctx, ws, strings.NewReader(addrsInput(keys)))
	require.NoError(t, err)
	require.Len(t, runs, 4)

	reduced, err := c.reduceRuns(ctx, ws, runs)
	require.NoError(t, err)
	require.LessOrEqual(t, len(reduced), 2)

	// Reduction is record-preserving: only the run count shrinks.
	var total int64
	for _, r := range reduced {
		total += r.Records
		require.True(t, isSorted(runContents(t, c, r)))
	}
	require.Equal(t, int64(len(keys)), total)

	// Consumed input runs are gone.
	for _, r := range runs {
		_, err := os.Stat(r.Path)
		require.ErrorIs(t, err, os.ErrNotExist)
	}
}

func TestReduceRunsFanInOneTerminates(t *testing.T) {
	c, ws := newTestCounter(t, WithBatchSize(1), WithFanIn(1))
	ctx := context.Background()

	keys := mustKeys(t, "::1", "::1", "::1", "::1", "::1")

	runs, err := c.buildRuns(ctx, ws, strings.NewReader(addrsInput(keys)))
	require.NoError(t, err)
	require.Len(t, runs, 5)

	reduced, err := c.reduceRuns(ctx, ws, runs)
	require.NoError(t, err)
	require.Len(t, reduced, 1)
	require.Equal(t, int64(5), reduced[0].Records)

	distinct, err := c.countUnique(ctx, reduced)
	require.NoError(t, err)
	require.Equal(t, uint64(1), distinct)
}

func TestCountUniqueEmptyRunSet(t *testing.T) {
	c, _ := newTestCounter(t)

	distinct, err := c.countUnique(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), distinct)
}

func TestCountUniqueFailsOnMissingRun(t *testing.T) {
	c, ws := newTestCounter(t)

	_, err := c.countUnique(context.Background(), []run.Run{
		{Path: ws.runPath(0), Records: 1},
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func isSorted(keys []key.Key) bool {
	for i := 1; i < len(keys); i++ {
		if key.Compare(keys[i-1], keys[i]) > 0 {
			return false
		}
	}
	return true
}
