package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/uniqip/key"
	"github.com/hupe1980/uniqip/resource"
)

// ReaderOptions configures a run Reader.
type ReaderOptions struct {
	// Compressed expects a zstd stream instead of raw records.
	Compressed bool

	// Controller, if set, throttles reads against its IO budget.
	Controller *resource.Controller
}

// Reader streams the keys of one run file in order.
type Reader struct {
	path string
	file *os.File
	zr   *zstd.Decoder
	r    io.Reader
}

// Open opens a run file for sequential reading.
//
// For uncompressed runs the file length is validated up front: a length that
// is not a multiple of the key width means the run was truncated or
// interfered with, which is fatal for the whole pipeline.
func Open(ctx context.Context, path string, optFns ...func(*ReaderOptions)) (*Reader, error) {
	var opts ReaderOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open run %s: %w", path, err)
	}

	if !opts.Compressed {
		st, err := file.Stat()
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("open run %s: %w", path, err)
		}
		if st.Size()%key.Size != 0 {
			size := st.Size()
			_ = file.Close()
			return nil, &CorruptError{Path: path, Size: size}
		}
	}

	adviseSequential(file)

	var src io.Reader = file
	if opts.Controller.Limited() {
		src = resource.NewLimitedReader(ctx, opts.Controller, src)
	}

	r := &Reader{
		path: path,
		file: file,
	}

	br := bufio.NewReaderSize(src, bufferSize)
	if opts.Compressed {
		zr, err := zstd.NewReader(br)
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("open run %s: %w", path, err)
		}
		r.zr = zr
		r.r = zr
	} else {
		r.r = br
	}

	return r, nil
}

// Next returns the next key. It returns io.EOF when the run is exhausted and
// a CorruptError if the stream ends inside a record.
func (r *Reader) Next() (key.Key, error) {
	var k key.Key
	_, err := io.ReadFull(r.r, k[:])
	switch {
	case err == nil:
		return k, nil
	case errors.Is(err, io.EOF):
		return k, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return k, &CorruptError{Path: r.path, Size: -1}
	default:
		return k, fmt.Errorf("read run %s: %w", r.path, err)
	}
}

// Close releases the reader's file handle.
func (r *Reader) Close() error {
	if r.zr != nil {
		r.zr.Close()
	}
	return r.file.Close()
}
