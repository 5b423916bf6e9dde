package run

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hupe1980/uniqip/key"
)

// bufferSize is the read/write buffer used for run files. Runs are scanned
// strictly sequentially, so a large buffer keeps syscall counts low.
const bufferSize = 1 << 20

// Run is a handle to one sorted run file. Records is the number of keys in
// the run, tracked in memory by whichever stage wrote it; the file itself
// carries no count.
type Run struct {
	Path    string
	Records int64
}

// Remove deletes the run file. A run that is already gone is not an error:
// ownership transfers by deletion and double-deletes are harmless.
func (r Run) Remove() error {
	if err := os.Remove(r.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove run %s: %w", r.Path, err)
	}
	return nil
}

// Name returns the file name of the idx-th initial run.
func Name(idx int64) string {
	return fmt.Sprintf("run_%06d.bin", idx)
}

// MergeName returns the file name of the idx-th merged run of a reduction
// generation.
func MergeName(level, idx int) string {
	return fmt.Sprintf("merge_%03d_%06d.bin", level, idx)
}

// CorruptError reports a run file whose contents cannot be a whole number of
// records: either its length is not a multiple of the key width, or a
// compressed stream ended mid-record (Size < 0).
type CorruptError struct {
	Path string
	Size int64
}

func (e *CorruptError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("run file %s: truncated record", e.Path)
	}
	return fmt.Sprintf("run file %s: size %d is not a multiple of record size %d", e.Path, e.Size, key.Size)
}

// SyncDir flushes directory metadata so a rename or unlink inside dir is
// durable.
func SyncDir(dir string) error {
	f, err := os.OpenFile(dir, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
