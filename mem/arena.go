package mem

import (
	"unsafe"

	"github.com/craftkit/web-runtime/errors"
)

const defaultChunkSize = 4096

// Scope is the token returned by Arena.Begin and consumed by Arena.End.
type Scope struct {
	id uint64
}

type mark struct {
	scope Scope
	chunk int
	used  int
}

// Arena is a scoped bump allocator. Allocations are O(1) out of growable
// chunks; End releases everything allocated since the matching Begin in one
// bulk operation. Chunks are never moved, so slices handed out stay valid
// until their scope closes.
//
// Arena is not safe for concurrent use; each logical flow owns its own.
type Arena struct {
	chunks  [][]byte
	scopes  []mark
	chunk   int
	used    int
	nextID  uint64
	fallbck int
}

// NewArena creates an arena. chunkSize is the size of the first chunk;
// zero selects a default.
func NewArena(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Arena{fallbck: chunkSize}
}

// Begin opens a new allocation scope and returns its token.
func (a *Arena) Begin() Scope {
	a.nextID++
	s := Scope{id: a.nextID}
	a.scopes = append(a.scopes, mark{scope: s, chunk: a.chunk, used: a.used})
	return s
}

// End closes the most recently opened scope, releasing every allocation made
// since the matching Begin. Passing any token other than the innermost open
// scope's, or calling End with no scope open, is a contract violation.
func (a *Arena) End(s Scope) error {
	if len(a.scopes) == 0 {
		return errors.ScopeUnderflow("End with no open scope")
	}
	top := a.scopes[len(a.scopes)-1]
	if top.scope != s {
		return errors.ScopeUnderflow("End does not match innermost Begin")
	}
	a.scopes = a.scopes[:len(a.scopes)-1]
	a.chunk = top.chunk
	a.used = top.used
	return nil
}

// Alloc returns n bytes from the current chunk, growing the arena as needed.
// The returned slice is valid until the innermost open scope ends (or Reset).
// Reclaimed chunk memory is reused without zeroing.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.InvalidInput(errors.PhaseMemory, "alloc size must not be negative")
	}
	if n == 0 {
		return []byte{}, nil
	}

	if len(a.chunks) == 0 {
		size := a.fallbck
		if size < n {
			size = n
		}
		a.chunks = append(a.chunks, make([]byte, size))
	}

	for a.used+n > len(a.chunks[a.chunk]) {
		if a.chunk+1 < len(a.chunks) {
			// Reuse a chunk retained from an earlier, since-closed scope.
			a.chunk++
			a.used = 0
			continue
		}
		size := len(a.chunks[len(a.chunks)-1]) * 2
		if size < n {
			size = n
		}
		a.chunks = append(a.chunks, make([]byte, size))
		a.chunk = len(a.chunks) - 1
		a.used = 0
	}

	block := a.chunks[a.chunk][a.used : a.used+n : a.used+n]
	a.used += n
	return block, nil
}

// AllocString copies s into the arena and returns a string aliasing the
// arena storage. The result is valid only until the scope closes.
func (a *Arena) AllocString(s string) (string, error) {
	if len(s) == 0 {
		return "", nil
	}
	b, err := a.Alloc(len(s))
	if err != nil {
		return "", err
	}
	copy(b, s)
	return unsafe.String(&b[0], len(b)), nil
}

// Depth returns the number of open scopes.
func (a *Arena) Depth() int { return len(a.scopes) }

// Reset releases all scopes and allocations. Chunk storage is retained for
// reuse.
func (a *Arena) Reset() {
	a.scopes = a.scopes[:0]
	a.chunk = 0
	a.used = 0
}
