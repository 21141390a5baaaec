package mem

import (
	"sync"

	"github.com/craftkit/web-runtime/errors"
)

const (
	minClass = 16
	// Blocks above this size are not retained on the free list.
	maxRetainedClass = 1 << 20
)

// Stats reports cumulative pool activity.
type Stats struct {
	// TotalAllocated is the total number of bytes ever requested.
	TotalAllocated uint64
	// Outstanding is the number of blocks allocated and not yet freed.
	Outstanding int
	// Reused counts allocations satisfied from the free list.
	Reused uint64
}

// Pool is a general-purpose pooled allocator. Freed blocks go onto a free
// list keyed by size class and are handed out again without zeroing.
type Pool struct {
	free        map[int][][]byte
	outstanding map[*byte]int
	stats       Stats
	mu          sync.Mutex
	closed      bool
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		free:        make(map[int][][]byte),
		outstanding: make(map[*byte]int),
	}
}

// sizeClass rounds n up to the next power of two, with a floor of minClass.
func sizeClass(n int) int {
	c := minClass
	for c < n {
		c <<= 1
	}
	return c
}

// Alloc returns a block of at least size bytes (len == size). The block's
// contents are unspecified when it comes from the free list.
func (p *Pool) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.InvalidInput(errors.PhaseMemory, "alloc size must be positive")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.Closed(errors.PhaseMemory, "pool")
	}

	class := sizeClass(size)
	var block []byte
	if list := p.free[class]; len(list) > 0 {
		block = list[len(list)-1]
		p.free[class] = list[:len(list)-1]
		p.stats.Reused++
	} else {
		block = make([]byte, class)
	}

	block = block[:size]
	p.outstanding[&block[0]] = class
	p.stats.TotalAllocated += uint64(size)
	p.stats.Outstanding++
	return block, nil
}

// Free returns a block to the pool. The block must have come from Alloc on
// this pool and must not have been freed already.
func (p *Pool) Free(block []byte) error {
	if len(block) == 0 {
		return errors.InvalidInput(errors.PhaseMemory, "cannot free empty block")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.Closed(errors.PhaseMemory, "pool")
	}

	key := &block[0]
	class, ok := p.outstanding[key]
	if !ok {
		return errors.DoubleFree(len(block))
	}
	delete(p.outstanding, key)
	p.stats.Outstanding--

	if class <= maxRetainedClass {
		p.free[class] = append(p.free[class], block[:class])
	}
	return nil
}

// Stats returns a snapshot of cumulative pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close tears the pool down. Blocks still outstanding are a caller bug;
// the pool releases its free lists but does not reclaim them. Close is
// idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.free = nil
	return nil
}
