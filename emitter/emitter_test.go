package emitter

import (
	"testing"

	"github.com/craftkit/web-runtime/value"
)

func TestEmit_RegistrationOrder(t *testing.T) {
	e := New()
	var order []string

	e.On("x", func(value.Value) { order = append(order, "a") })
	e.On("x", func(value.Value) { order = append(order, "b") })
	e.On("x", func(value.Value) { order = append(order, "c") })

	e.Emit("x", value.Null())

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("dispatch order = %v, want [a b c]", order)
	}
}

func TestEmit_PayloadDelivered(t *testing.T) {
	e := New()
	var got value.Value
	e.On("data", func(v value.Value) { got = v })

	payload := value.NewObject()
	payload.ObjectSet("n", value.Int(42))
	e.Emit("data", payload)

	n, _ := got.ObjectGet("n")
	if i, _ := n.AsInt(); i != 42 {
		t.Errorf("payload = %v", got)
	}
}

func TestOnce_FiresExactlyOnce(t *testing.T) {
	e := New()
	count := 0
	e.Once("x", func(value.Value) { count++ })

	e.Emit("x", value.Null())
	e.Emit("x", value.Null())

	if count != 1 {
		t.Errorf("once listener fired %d times", count)
	}
	if e.ListenerCount("x") != 0 {
		t.Errorf("ListenerCount = %d after once fired", e.ListenerCount("x"))
	}
}

func TestOnce_RemovedBeforeLaterListeners(t *testing.T) {
	e := New()
	var sawSelf bool
	var id ListenerID

	id = e.Once("x", func(value.Value) {})
	e.On("x", func(value.Value) {
		// By the time the second listener runs, the once listener is gone.
		e.mu.Lock()
		_, present := e.byID[id]
		e.mu.Unlock()
		sawSelf = present
	})

	e.Emit("x", value.Null())
	if sawSelf {
		t.Error("once listener still registered while later listener ran")
	}
}

func TestOff_DuringEmit(t *testing.T) {
	e := New()
	var fired []string
	var idB ListenerID

	e.On("x", func(value.Value) {
		fired = append(fired, "a")
		e.Off(idB)
	})
	idB = e.On("x", func(value.Value) { fired = append(fired, "b") })
	e.On("x", func(value.Value) { fired = append(fired, "c") })

	e.Emit("x", value.Null())

	if len(fired) != 2 || fired[0] != "a" || fired[1] != "c" {
		t.Errorf("fired = %v, want [a c]", fired)
	}
}

func TestOff_UnknownIDIsNoOp(t *testing.T) {
	e := New()
	e.Off(ListenerID(999)) // must not panic

	id := e.On("x", func(value.Value) {})
	e.Off(id)
	e.Off(id) // second removal is a no-op too

	if e.ListenerCount("x") != 0 {
		t.Errorf("ListenerCount = %d", e.ListenerCount("x"))
	}
}

func TestEmit_NoListeners(t *testing.T) {
	e := New()
	// Silent no-op.
	e.Emit("nobody-home", value.String("payload"))
}

func TestRemoveAll(t *testing.T) {
	e := New()
	e.On("x", func(value.Value) {})
	e.On("x", func(value.Value) {})
	e.On("y", func(value.Value) {})

	e.RemoveAll("x")

	if e.ListenerCount("x") != 0 {
		t.Errorf("x ListenerCount = %d", e.ListenerCount("x"))
	}
	if e.ListenerCount("y") != 1 {
		t.Errorf("y ListenerCount = %d", e.ListenerCount("y"))
	}
}

func TestListenerIDs_NotReused(t *testing.T) {
	e := New()
	id1 := e.On("x", func(value.Value) {})
	e.Off(id1)
	id2 := e.On("x", func(value.Value) {})
	if id1 == id2 {
		t.Error("listener id reused after removal")
	}
}

func TestListenerAddedDuringEmit_FiresNextEmit(t *testing.T) {
	e := New()
	count := 0
	e.On("x", func(value.Value) {
		if count == 0 {
			e.On("x", func(value.Value) { count += 10 })
		}
		count++
	})

	e.Emit("x", value.Null())
	if count != 1 {
		t.Fatalf("count = %d after first emit, want 1", count)
	}
	e.Emit("x", value.Null())
	if count != 12 {
		t.Errorf("count = %d after second emit, want 12", count)
	}
}
