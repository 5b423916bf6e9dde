package uniqip

import "log/slog"

const (
	// DefaultBatchSize is the number of keys buffered in memory before a
	// sorted run is flushed to disk. Peak buffer memory is roughly
	// DefaultBatchSize * 16 bytes per in-flight batch.
	DefaultBatchSize = 1_000_000

	// DefaultFanIn is the maximum number of runs merged in one pass, and
	// therefore the maximum number of run files a single merge holds open.
	DefaultFanIn = 128
)

type options struct {
	batchSize     int
	fanIn         int
	workers       int
	compress      bool
	keepWorkspace bool
	workspaceDir  string
	ioLimit       int64
	logger        *Logger
	metrics       MetricsCollector
}

// Option configures a Counter.
type Option func(*options)

// WithBatchSize sets how many keys are buffered and sorted in memory before
// being flushed as one run. Larger batches mean fewer initial runs and a
// shallower merge tree at the cost of memory.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithFanIn sets the maximum number of runs merged in one pass. This is also
// the file-descriptor budget of the final counting stage, which never merges
// more runs than this at once.
func WithFanIn(n int) Option {
	return func(o *options) {
		o.fanIn = n
	}
}

// WithWorkers sets the number of concurrent sort/flush and merge jobs.
// The default of 1 keeps the pipeline fully sequential; each additional
// worker may hold up to fan-in file descriptors during reduction passes.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCompression writes runs through zstd. Trades CPU for disk footprint;
// the default leaves runs as raw fixed-width records.
func WithCompression(compress bool) Option {
	return func(o *options) {
		o.compress = compress
	}
}

// WithKeepWorkspace retains the temporary workspace instead of deleting it at
// teardown, for diagnostics. The kept path is logged at Info level.
func WithKeepWorkspace(keep bool) Option {
	return func(o *options) {
		o.keepWorkspace = keep
	}
}

// WithWorkspaceDir sets the parent directory under which the per-invocation
// workspace is created. Empty means the system temp directory.
func WithWorkspaceDir(dir string) Option {
	return func(o *options) {
		o.workspaceDir = dir
	}
}

// WithIOLimit caps run-file IO throughput in bytes per second.
// Zero means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithLogger configures structured logging for pipeline stages.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for pipeline stages.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		batchSize: DefaultBatchSize,
		fanIn:     DefaultFanIn,
		workers:   1,
		logger:    NoopLogger(),
		metrics:   NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
