package merge

import (
	"container/heap"
	"errors"
	"io"

	"github.com/hupe1980/uniqip/key"
)

// Source is one sorted key sequence feeding the merge. Next returns io.EOF
// when the source is exhausted; any other error aborts the merge.
type Source interface {
	Next() (key.Key, error)
}

// cursor is the front of one source, queued by key with the source index as
// tie-break.
type cursor struct {
	key key.Key
	src int
}

// Compile time check to ensure cursorHeap satisfies the heap interface.
var _ heap.Interface = (*cursorHeap)(nil)

type cursorHeap []cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	if c := key.Compare(h[i].key, h[j].key); c != 0 {
		return c < 0
	}
	return h[i].src < h[j].src
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) {
	*h = append(*h, x.(cursor))
}

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// Merger yields the globally sorted interleaving of its sources.
type Merger struct {
	sources []Source
	h       cursorHeap
}

// New primes a merger over sources by reading each source's first key.
// Sources that are empty from the start simply never enter the heap.
func New(sources []Source) (*Merger, error) {
	m := &Merger{
		sources: sources,
		h:       make(cursorHeap, 0, len(sources)),
	}

	for i, src := range sources {
		k, err := src.Next()
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m.h = append(m.h, cursor{key: k, src: i})
	}
	heap.Init(&m.h)

	return m, nil
}

// Next returns the smallest front key and advances its source. It returns
// io.EOF once every source is drained.
func (m *Merger) Next() (key.Key, error) {
	if len(m.h) == 0 {
		return key.Key{}, io.EOF
	}

	c := m.h[0]
	next, err := m.sources[c.src].Next()
	switch {
	case errors.Is(err, io.EOF):
		heap.Pop(&m.h)
	case err != nil:
		return key.Key{}, err
	default:
		m.h[0].key = next
		heap.Fix(&m.h, 0)
	}

	return c.key, nil
}
