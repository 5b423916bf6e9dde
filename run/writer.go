package run

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/uniqip/key"
	"github.com/hupe1980/uniqip/resource"
)

// WriterOptions configures a run Writer.
type WriterOptions struct {
	// Compress writes the run through a zstd encoder. Compressed runs can
	// only be read back with ReaderOptions.Compressed set.
	Compress bool

	// Sync fsyncs the file and its directory before the run is published.
	// Reduction passes set this so input runs are only deleted once their
	// merged replacement is durable.
	Sync bool

	// Controller, if set, throttles writes against its IO budget.
	Controller *resource.Controller
}

// Writer streams keys into a new run file. The run is staged under a
// temporary name and becomes visible atomically on Close; an aborted writer
// leaves no trace.
type Writer struct {
	ctx     context.Context
	opts    WriterOptions
	path    string
	tmpPath string
	file    *os.File
	bw      *bufio.Writer
	zw      *zstd.Encoder
	w       io.Writer
	records int64
	closed  bool
}

// NewWriter creates a run writer targeting path.
func NewWriter(ctx context.Context, path string, optFns ...func(*WriterOptions)) (*Writer, error) {
	var opts WriterOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	tmpPath := path + ".tmp"

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("create run %s: %w", path, err)
	}

	w := &Writer{
		ctx:     ctx,
		opts:    opts,
		path:    path,
		tmpPath: tmpPath,
		file:    file,
	}

	// Rate limiting wraps the file directly so the budget is charged in
	// physical bytes, after compression.
	var sink io.Writer = file
	if opts.Controller.Limited() {
		sink = resource.NewLimitedWriter(ctx, opts.Controller, sink)
	}
	w.bw = bufio.NewWriterSize(sink, bufferSize)
	w.w = w.bw

	if opts.Compress {
		zw, err := zstd.NewWriter(w.bw)
		if err != nil {
			_ = file.Close()
			_ = os.Remove(tmpPath)
			return nil, fmt.Errorf("create run %s: %w", path, err)
		}
		w.zw = zw
		w.w = zw
	}

	return w, nil
}

// WriteKey appends one key to the run. Keys must arrive in ascending order;
// the writer does not verify this.
func (w *Writer) WriteKey(k key.Key) error {
	if _, err := w.w.Write(k[:]); err != nil {
		return fmt.Errorf("write run %s: %w", w.path, err)
	}
	w.records++
	return nil
}

// Records returns the number of keys written so far.
func (w *Writer) Records() int64 {
	return w.records
}

// Path returns the final path of the run.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes all buffers, optionally fsyncs, and publishes the run by
// renaming it to its final path. On success the returned Run is live.
func (w *Writer) Close() (Run, error) {
	if w.closed {
		return Run{}, fmt.Errorf("run writer %s: already closed", w.path)
	}
	w.closed = true

	fail := func(err error) (Run, error) {
		_ = w.file.Close()
		_ = os.Remove(w.tmpPath)
		return Run{}, fmt.Errorf("finish run %s: %w", w.path, err)
	}

	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return fail(err)
		}
	}
	if err := w.bw.Flush(); err != nil {
		return fail(err)
	}
	if w.opts.Sync {
		if err := w.file.Sync(); err != nil {
			return fail(err)
		}
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		return Run{}, fmt.Errorf("finish run %s: %w", w.path, err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		_ = os.Remove(w.tmpPath)
		return Run{}, fmt.Errorf("finish run %s: %w", w.path, err)
	}
	if w.opts.Sync {
		if err := SyncDir(filepath.Dir(w.path)); err != nil {
			return Run{}, fmt.Errorf("finish run %s: %w", w.path, err)
		}
	}

	return Run{Path: w.path, Records: w.records}, nil
}

// Abort discards the writer and its staged file. Safe to call after a failed
// WriteKey; a no-op after Close.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	_ = w.file.Close()
	_ = os.Remove(w.tmpPath)
}
