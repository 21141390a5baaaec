package bridge

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	webruntime "github.com/craftkit/web-runtime"
	"github.com/craftkit/web-runtime/errors"
	"github.com/craftkit/web-runtime/value"
)

// pendingCall represents a method call waiting for its correlated reply.
type pendingCall struct {
	done   chan struct{}
	result value.Value
	err    error
}

// Client is the caller side of the bridge: it issues Requests with unique
// correlation ids and matches replies back to their callers. Replies may
// arrive in any order.
type Client struct {
	transport webruntime.Transport
	pending   map[string]*pendingCall
	mu        sync.Mutex
	nextID    atomic.Uint64
	events    func(name string, data value.Value)
}

// NewClient creates a client that writes requests through transport.
func NewClient(transport webruntime.Transport) *Client {
	return &Client{
		transport: transport,
		pending:   make(map[string]*pendingCall),
	}
}

// SetTransport replaces where requests are written. Useful when the two
// ends of a loopback reference each other.
func (c *Client) SetTransport(t webruntime.Transport) {
	c.mu.Lock()
	c.transport = t
	c.mu.Unlock()
}

// OnEvent installs a callback for unsolicited event envelopes arriving via
// HandleReply.
func (c *Client) OnEvent(fn func(name string, data value.Value)) {
	c.mu.Lock()
	c.events = fn
	c.mu.Unlock()
}

// Invoke sends a request and blocks until its reply arrives or ctx is done.
// Abandoning a call (ctx cancellation) does not leak: the pending entry is
// removed immediately and a late reply for it is dropped.
func (c *Client) Invoke(ctx context.Context, method string, params value.Value) (value.Value, error) {
	id := strconv.FormatUint(c.nextID.Add(1), 10)

	call := &pendingCall{done: make(chan struct{})}
	c.mu.Lock()
	c.pending[id] = call
	c.mu.Unlock()

	raw, err := Encode(Request{ID: id, Method: method, Params: params})
	if err != nil {
		c.drop(id)
		return value.Value{}, err
	}
	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()
	if transport == nil {
		c.drop(id)
		return value.Value{}, errors.NotInitialized(errors.PhaseDispatch, "client transport")
	}
	if err := transport.Send(raw); err != nil {
		c.drop(id)
		return value.Value{}, errors.IO(errors.PhaseDispatch, "send request", err)
	}

	select {
	case <-call.done:
		return call.result, call.err
	case <-ctx.Done():
		c.drop(id)
		return value.Value{}, ctx.Err()
	}
}

// Pending returns the number of calls still awaiting a reply.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Client) drop(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// HandleReply feeds one raw message arriving from the native side. Replies
// for unknown ids (abandoned calls) are dropped silently; event envelopes
// go to the OnEvent callback.
func (c *Client) HandleReply(raw []byte) error {
	msg, err := DecodeMessage(raw)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case Response:
		c.complete(m.ID, m.Result, nil)
	case ErrorResponse:
		c.complete(m.ID, value.Value{}, &HandlerError{Code: m.Code, Message: m.Message, Data: m.Data})
	case Event:
		c.mu.Lock()
		fn := c.events
		c.mu.Unlock()
		if fn != nil {
			fn(m.Name, m.Data)
		}
	default:
		return errors.MalformedRequest("client accepts only reply and event envelopes")
	}
	return nil
}

func (c *Client) complete(id string, result value.Value, err error) {
	c.mu.Lock()
	call, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	call.result = result
	call.err = err
	close(call.done)
}
