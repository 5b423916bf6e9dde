package uniqip

import (
	"os"
	"path/filepath"

	"github.com/hupe1980/uniqip/run"
)

// workspace is the scoped temporary directory holding every run of one
// invocation. It is created by the orchestrator and, unless retention is
// requested, removed on every exit path.
type workspace struct {
	dir string
}

func newWorkspace(parent string) (*workspace, error) {
	dir, err := os.MkdirTemp(parent, "uniqip_")
	if err != nil {
		return nil, err
	}
	return &workspace{dir: dir}, nil
}

// runPath returns the path of the idx-th initial run.
func (ws *workspace) runPath(idx int64) string {
	return filepath.Join(ws.dir, run.Name(idx))
}

// mergePath returns the path of the idx-th merged run of a reduction
// generation.
func (ws *workspace) mergePath(level, idx int) string {
	return filepath.Join(ws.dir, run.MergeName(level, idx))
}

func (ws *workspace) remove() error {
	return os.RemoveAll(ws.dir)
}
