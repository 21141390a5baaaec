package reload

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server owns a watcher and a broadcaster and serves the websocket
// endpoint at /ws. It exists so cmd wiring is one call.
type Server struct {
	cfg         *Config
	logger      *zap.Logger
	watcher     *Watcher
	broadcaster *Broadcaster
	// OnTrigger, when set, observes each debounced trigger after it
	// has been broadcast.
	OnTrigger func(Kind)
}

// NewServer builds a server from a resolved config.
func NewServer(cfg *Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:         cfg,
		logger:      logger,
		broadcaster: NewBroadcaster(logger.Named("broadcast")),
	}
}

// Broadcaster exposes the websocket fan-out, for monitors that want
// client counts.
func (s *Server) Broadcaster() *Broadcaster { return s.broadcaster }

// Trigger broadcasts a reload signal as if the watcher had fired one.
func (s *Server) Trigger(kind Kind) {
	s.broadcaster.Broadcast(kind)
	if s.OnTrigger != nil {
		s.OnTrigger(kind)
	}
}

// Run watches and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	watcher, err := NewWatcher(s.cfg, s.logger.Named("watch"), s.Trigger)
	if err != nil {
		return err
	}
	s.watcher = watcher

	mux := http.NewServeMux()
	mux.Handle("/ws", s.broadcaster)

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		watcher.Close()
		return err
	}
	srv := &http.Server{Handler: mux}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("reload server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Strings("roots", s.cfg.Roots))

	select {
	case <-ctx.Done():
	case err := <-errc:
		watcher.Close()
		s.broadcaster.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	watcher.Close()
	s.broadcaster.Close()
	return ctx.Err()
}
