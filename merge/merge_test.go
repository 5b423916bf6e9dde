package merge

import (
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/uniqip/key"
	"github.com/hupe1980/uniqip/testutil"
)

// sliceSource feeds a merge from an in-memory sorted slice.
type sliceSource struct {
	keys []key.Key
	pos  int
}

func (s *sliceSource) Next() (key.Key, error) {
	if s.pos >= len(s.keys) {
		return key.Key{}, io.EOF
	}
	k := s.keys[s.pos]
	s.pos++
	return k, nil
}

// failingSource errors after a few records.
type failingSource struct {
	left int
	err  error
}

func (s *failingSource) Next() (key.Key, error) {
	if s.left <= 0 {
		return key.Key{}, s.err
	}
	s.left--
	return key.Key{}, nil
}

func drain(t *testing.T, m *Merger) []key.Key {
	t.Helper()

	var out []key.Key
	for {
		k, err := m.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, k)
	}
}

func TestMergeIsRecordBijection(t *testing.T) {
	rng := testutil.NewRNG(7)
	draw, _ := rng.KeysFromPool(2000, 300)

	// Partition the multiset into unevenly sized sorted sources.
	var (
		sources []Source
		total   int
		want    = map[key.Key]int{}
	)
	for _, k := range draw {
		want[k]++
	}
	for len(draw) > 0 {
		n := min(1+rng.Intn(500), len(draw))
		part := slices.Clone(draw[:n])
		slices.SortFunc(part, key.Compare)
		sources = append(sources, &sliceSource{keys: part})
		total += n
		draw = draw[n:]
	}

	m, err := New(sources)
	require.NoError(t, err)

	out := drain(t, m)
	require.Len(t, out, total)

	// Globally non-decreasing.
	require.True(t, slices.IsSortedFunc(out, key.Compare))

	// Same multiset in as out: no record dropped, none duplicated.
	got := map[key.Key]int{}
	for _, k := range out {
		got[k]++
	}
	require.Equal(t, want, got)
}

func TestMergeEqualKeysAcrossSources(t *testing.T) {
	a := key.Key{0xAA}
	sources := []Source{
		&sliceSource{keys: []key.Key{a, a}},
		&sliceSource{keys: []key.Key{a}},
	}

	m, err := New(sources)
	require.NoError(t, err)

	out := drain(t, m)
	require.Equal(t, []key.Key{a, a, a}, out)
}

func TestMergeNoSources(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)

	_, err = m.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestMergeSkipsEmptySources(t *testing.T) {
	k1 := key.Key{1}
	k2 := key.Key{2}
	sources := []Source{
		&sliceSource{},
		&sliceSource{keys: []key.Key{k2}},
		&sliceSource{},
		&sliceSource{keys: []key.Key{k1}},
	}

	m, err := New(sources)
	require.NoError(t, err)
	require.Equal(t, []key.Key{k1, k2}, drain(t, m))
}

func TestMergeSingleSourcePassthrough(t *testing.T) {
	rng := testutil.NewRNG(8)
	keys := rng.Keys(100)
	slices.SortFunc(keys, key.Compare)

	m, err := New([]Source{&sliceSource{keys: keys}})
	require.NoError(t, err)
	require.Equal(t, keys, drain(t, m))
}

func TestMergePropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")

	m, err := New([]Source{&failingSource{left: 3, err: boom}})
	require.NoError(t, err)

	var got error
	for {
		_, err := m.Next()
		if err != nil {
			got = err
			break
		}
	}
	require.ErrorIs(t, got, boom)
}
