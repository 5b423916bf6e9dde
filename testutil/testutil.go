package testutil

import (
	"math/rand"
	"net/netip"
	"sync"

	"github.com/hupe1980/uniqip/key"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Key returns a uniformly random 16-byte key.
func (r *RNG) Key() key.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	var k key.Key
	for i := 0; i < key.Size; i += 8 {
		v := r.rand.Uint64()
		for j := 0; j < 8; j++ {
			k[i+j] = byte(v >> (8 * j))
		}
	}
	return k
}

// Keys returns n random keys. Duplicates are possible but unlikely for small
// n; use KeysFromPool to force a controlled duplicate rate.
func (r *RNG) Keys(n int) []key.Key {
	keys := make([]key.Key, n)
	for i := range keys {
		keys[i] = r.Key()
	}
	return keys
}

// KeysFromPool returns n keys drawn uniformly from a pool of poolSize
// distinct keys, giving a deterministic expected duplicate rate.
// The pool itself is returned alongside the draw.
func (r *RNG) KeysFromPool(n, poolSize int) (draw, pool []key.Key) {
	pool = r.Keys(poolSize)
	draw = make([]key.Key, n)
	for i := range draw {
		draw[i] = pool[r.Intn(poolSize)]
	}
	return draw, pool
}

// Addr returns the textual IPv6 form of a random key.
func (r *RNG) Addr() string {
	k := r.Key()
	return netip.AddrFrom16(k).String()
}

// DistinctCount returns the number of distinct keys in keys, via a map.
// Reference implementation for comparing pipeline results against.
func DistinctCount(keys []key.Key) uint64 {
	set := make(map[key.Key]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return uint64(len(set))
}
