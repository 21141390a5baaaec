package mem

import (
	"sync"

	"github.com/craftkit/web-runtime/errors"
)

// Allocation describes one outstanding block held by a TrackingPool.
type Allocation struct {
	Tag  string
	Size int
}

// TrackingPool wraps a Pool and records every allocation until it is freed.
// At teardown it reports each block allocated without a matching Free. It is
// intended for diagnostics and tests; production flows use the Pool directly.
type TrackingPool struct {
	pool  *Pool
	live  map[*byte]Allocation
	mu    sync.Mutex
}

// NewTrackingPool wraps pool with leak tracking.
func NewTrackingPool(pool *Pool) *TrackingPool {
	return &TrackingPool{
		pool: pool,
		live: make(map[*byte]Allocation),
	}
}

// Alloc allocates an untagged block.
func (t *TrackingPool) Alloc(size int) ([]byte, error) {
	return t.AllocTagged(size, "")
}

// AllocTagged allocates a block and records tag against it, so leak reports
// can say what the allocation was for.
func (t *TrackingPool) AllocTagged(size int, tag string) ([]byte, error) {
	block, err := t.pool.Alloc(size)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.live[&block[0]] = Allocation{Tag: tag, Size: size}
	t.mu.Unlock()
	return block, nil
}

// Free releases a tracked block back to the pool.
func (t *TrackingPool) Free(block []byte) error {
	if err := t.pool.Free(block); err != nil {
		return err
	}
	t.mu.Lock()
	delete(t.live, &block[0])
	t.mu.Unlock()
	return nil
}

// Leaks returns the allocations currently outstanding.
func (t *TrackingPool) Leaks() []Allocation {
	t.mu.Lock()
	defer t.mu.Unlock()
	leaks := make([]Allocation, 0, len(t.live))
	for _, a := range t.live {
		leaks = append(leaks, a)
	}
	return leaks
}

// Close tears down the underlying pool. If any allocation is still
// outstanding it returns a leak error carrying the count.
func (t *TrackingPool) Close() error {
	t.mu.Lock()
	n := len(t.live)
	t.mu.Unlock()

	if err := t.pool.Close(); err != nil {
		return err
	}
	if n > 0 {
		return errors.Leaked(n)
	}
	return nil
}
