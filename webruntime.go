package webruntime

// Allocator hands out byte blocks for transient message processing.
// Both mem.Pool and mem.Arena satisfy it.
type Allocator interface {
	Alloc(size int) ([]byte, error)
}

// Transport delivers an encoded bridge message to the script side.
// Implementations must tolerate calls from multiple goroutines; the
// bridge engine serializes writes so each call carries one whole message.
type Transport interface {
	Send(message []byte) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(message []byte) error

func (f TransportFunc) Send(message []byte) error { return f(message) }
