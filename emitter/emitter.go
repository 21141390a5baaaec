package emitter

import (
	"sync"

	"github.com/craftkit/web-runtime/value"
)

// ListenerID identifies a registered listener. IDs are never reused within
// one emitter.
type ListenerID uint64

// Callback receives the payload passed to Emit.
type Callback func(data value.Value)

type listener struct {
	fn      Callback
	event   string
	id      ListenerID
	once    bool
	removed bool
}

// Emitter fans events out to listeners in registration order. It is safe
// for concurrent use; the bridge drives it from a single flow but reload
// and capability code may emit from their own goroutines.
type Emitter struct {
	events map[string][]*listener
	byID   map[ListenerID]*listener
	mu     sync.Mutex
	nextID ListenerID
}

// New creates an empty emitter.
func New() *Emitter {
	return &Emitter{
		events: make(map[string][]*listener),
		byID:   make(map[ListenerID]*listener),
	}
}

// On registers a persistent listener for event and returns its id.
func (e *Emitter) On(event string, fn Callback) ListenerID {
	return e.register(event, fn, false)
}

// Once registers a listener that is removed immediately after its first
// dispatch, before any later listener queued for the same Emit runs.
func (e *Emitter) Once(event string, fn Callback) ListenerID {
	return e.register(event, fn, true)
}

func (e *Emitter) register(event string, fn Callback, once bool) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	l := &listener{fn: fn, event: event, id: e.nextID, once: once}
	e.events[event] = append(e.events[event], l)
	e.byID[l.id] = l
	return l.id
}

// Off removes a listener by id. Removing an unknown id is a no-op. Off is
// safe to call from within a callback invoked by the same emitter; a
// removed listener that has not yet run during the current Emit will not
// fire.
func (e *Emitter) Off(id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.byID[id]
	if !ok {
		return
	}
	e.remove(l)
}

// remove unlinks l from both tables. Caller holds e.mu.
func (e *Emitter) remove(l *listener) {
	l.removed = true
	delete(e.byID, l.id)
	list := e.events[l.event]
	for i, cand := range list {
		if cand == l {
			e.events[l.event] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(e.events[l.event]) == 0 {
		delete(e.events, l.event)
	}
}

// Emit synchronously dispatches data to every listener registered for event,
// in registration order. No listener is a silent no-op.
func (e *Emitter) Emit(event string, data value.Value) {
	e.mu.Lock()
	list := e.events[event]
	snapshot := make([]*listener, len(list))
	copy(snapshot, list)
	e.mu.Unlock()

	for _, l := range snapshot {
		e.mu.Lock()
		if l.removed {
			e.mu.Unlock()
			continue
		}
		if l.once {
			// Unlink before invoking so a reentrant Emit cannot fire it
			// twice.
			e.remove(l)
		}
		e.mu.Unlock()

		l.fn(data)
	}
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events[event])
}

// RemoveAll removes every listener registered for event.
func (e *Emitter) RemoveAll(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, l := range e.events[event] {
		l.removed = true
		delete(e.byID, l.id)
	}
	delete(e.events, event)
}
