// Package emitter provides the in-process publish/subscribe mechanism that
// fans out native-side occurrences (download progress, lifecycle changes) to
// registered callbacks.
//
// Dispatch order for an event is registration order, and that order is an
// observable guarantee. Emit snapshots the listener list, so callbacks may
// register and remove listeners freely: removing a listener that has not yet
// run during the same Emit prevents it from firing, and a listener added
// during Emit first fires on the next Emit.
//
// Listener ids are unique for the lifetime of the emitter and are the only
// handle for removal. Removing an unknown id is a no-op.
package emitter
