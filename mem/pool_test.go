package mem

import (
	stderrors "errors"
	"testing"

	"github.com/craftkit/web-runtime/errors"
)

func TestPool_AllocFree(t *testing.T) {
	p := NewPool()
	defer p.Close()

	b, err := p.Alloc(100)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if len(b) != 100 {
		t.Fatalf("len = %d, want 100", len(b))
	}
	if cap(b) < 100 {
		t.Fatalf("cap = %d, want >= 100", cap(b))
	}

	if err := p.Free(b); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	stats := p.Stats()
	if stats.Outstanding != 0 {
		t.Errorf("Outstanding = %d, want 0", stats.Outstanding)
	}
	if stats.TotalAllocated != 100 {
		t.Errorf("TotalAllocated = %d, want 100", stats.TotalAllocated)
	}
}

func TestPool_Reuse(t *testing.T) {
	p := NewPool()
	defer p.Close()

	b1, _ := p.Alloc(64)
	addr := &b1[0]
	if err := p.Free(b1); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	// Same size class comes back off the free list.
	b2, _ := p.Alloc(64)
	if &b2[0] != addr {
		t.Error("second Alloc did not reuse freed block")
	}
	if p.Stats().Reused != 1 {
		t.Errorf("Reused = %d, want 1", p.Stats().Reused)
	}

	// A smaller request in the same class reuses it too.
	p.Free(b2)
	b3, _ := p.Alloc(40)
	if &b3[0] != addr {
		t.Error("smaller Alloc in same class did not reuse block")
	}
}

func TestPool_DoubleFree(t *testing.T) {
	p := NewPool()
	defer p.Close()

	b, _ := p.Alloc(32)
	if err := p.Free(b); err != nil {
		t.Fatalf("first Free failed: %v", err)
	}
	err := p.Free(b)
	if err == nil {
		t.Fatal("double Free succeeded")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindDoubleFree {
		t.Errorf("double Free error = %v, want double_free kind", err)
	}
}

func TestPool_FreeForeignBlock(t *testing.T) {
	p := NewPool()
	defer p.Close()

	if err := p.Free(make([]byte, 16)); err == nil {
		t.Error("freeing a block the pool never allocated succeeded")
	}
}

func TestPool_Closed(t *testing.T) {
	p := NewPool()
	p.Close()

	if _, err := p.Alloc(8); err == nil {
		t.Error("Alloc on closed pool succeeded")
	}
	// Close is idempotent.
	if err := p.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestPool_InvalidSize(t *testing.T) {
	p := NewPool()
	defer p.Close()

	if _, err := p.Alloc(0); err == nil {
		t.Error("Alloc(0) succeeded")
	}
	if _, err := p.Alloc(-1); err == nil {
		t.Error("Alloc(-1) succeeded")
	}
}

func TestSizeClass(t *testing.T) {
	tests := []struct{ n, want int }{
		{1, 16},
		{16, 16},
		{17, 32},
		{100, 128},
		{4096, 4096},
		{4097, 8192},
	}
	for _, tt := range tests {
		if got := sizeClass(tt.n); got != tt.want {
			t.Errorf("sizeClass(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
