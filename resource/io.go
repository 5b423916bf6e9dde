package resource

import (
	"context"
	"io"
)

// LimitedWriter wraps an io.Writer so that writes count against the
// controller's IO budget before they hit the underlying writer.
type LimitedWriter struct {
	w   io.Writer
	rc  *Controller
	ctx context.Context
}

// NewLimitedWriter creates a throttled writer. If rc has no IO limit the
// wrapper is a passthrough.
func NewLimitedWriter(ctx context.Context, rc *Controller, w io.Writer) *LimitedWriter {
	return &LimitedWriter{w: w, rc: rc, ctx: ctx}
}

func (w *LimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// LimitedReader wraps an io.Reader, charging the bytes actually read against
// the controller's IO budget after each read.
type LimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewLimitedReader creates a throttled reader. If rc has no IO limit the
// wrapper is a passthrough.
func NewLimitedReader(ctx context.Context, rc *Controller, r io.Reader) *LimitedReader {
	return &LimitedReader{r: r, rc: rc, ctx: ctx}
}

func (r *LimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if lerr := r.rc.AcquireIO(r.ctx, n); lerr != nil {
			return n, lerr
		}
	}
	return n, err
}
