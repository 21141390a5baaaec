// Package mem provides the three allocation disciplines used by the runtime
// core: a general-purpose pooled allocator with size-class block reuse, a
// scoped arena for transient per-operation allocations released in bulk, and
// a leak-tracking wrapper for diagnostics and tests.
//
// # Pool
//
// Pool recycles freed blocks through per-size-class free lists. Reused blocks
// are NOT zeroed; callers must initialize before reading. Freeing a block
// twice, or a block the pool did not hand out, is a contract violation and
// returns an error rather than corrupting the free list.
//
// # Arena
//
// Arena allocates from growable chunks and frees by scope:
//
//	a := mem.NewArena(0)
//	s := a.Begin()
//	buf, _ := a.Alloc(256)
//	// ... use buf ...
//	a.End(s) // releases every allocation made since Begin
//
// Scopes nest strictly. End always closes the most recently opened scope;
// closing out of order or with no scope open fails with a scope-underflow
// error. Memory released by End may be handed out again by a later scope,
// so callers must not hold arena slices past the matching End.
//
// # Ownership
//
// A Pool or Arena instance is owned by exactly one logical flow. Overlapping
// bridge dispatches each get their own arena scope instead of sharing one.
package mem
