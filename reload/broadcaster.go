package reload

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	clientSendBuffer = 8
	writeWait        = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 512,
	// Pages served from file:// or a dev server have no stable origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// stop closes the connection and releases the writer goroutine. The
// send channel is never closed so concurrent broadcasts stay safe.
func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Broadcaster fans reload signals out to connected websocket clients.
// Each client gets its own buffered send channel and writer goroutine,
// so one stalled connection never delays the rest.
type Broadcaster struct {
	logger  *zap.Logger
	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

// NewBroadcaster creates a broadcaster with no clients.
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// ServeHTTP upgrades the request to a websocket and keeps the client
// registered until its connection breaks.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		conn.Close()
		return
	}
	b.clients[c.id] = c
	b.mu.Unlock()
	b.logger.Info("client connected", zap.String("client", c.id))

	go b.writeLoop(c)
	b.readLoop(c)
}

// readLoop drains inbound frames until the connection breaks; the
// protocol is push-only so incoming payloads are discarded.
func (b *Broadcaster) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			b.drop(c, err)
			return
		}
	}
}

func (b *Broadcaster) writeLoop(c *client) {
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				b.drop(c, err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// drop unregisters a client. Safe to call more than once per client.
func (b *Broadcaster) drop(c *client, cause error) {
	b.mu.Lock()
	_, present := b.clients[c.id]
	delete(b.clients, c.id)
	b.mu.Unlock()
	c.stop()
	if present {
		b.logger.Info("client disconnected", zap.String("client", c.id), zap.Error(cause))
	}
}

// Broadcast queues a reload signal for every client. A client whose
// send buffer is full is disconnected instead of blocking the rest.
func (b *Broadcaster) Broadcast(kind Kind) {
	msg := []byte(`{"type":"reload"}`)
	if kind == KindStyle {
		msg = []byte(`{"type":"reload-style"}`)
	}

	b.mu.Lock()
	targets := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		targets = append(targets, c)
	}
	b.mu.Unlock()

	for _, c := range targets {
		select {
		case c.send <- msg:
		default:
			b.drop(c, nil)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close disconnects every client and refuses new ones.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	targets := make([]*client, 0, len(b.clients))
	for id, c := range b.clients {
		targets = append(targets, c)
		delete(b.clients, id)
	}
	b.mu.Unlock()

	for _, c := range targets {
		c.stop()
	}
	return nil
}
