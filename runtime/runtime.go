package runtime

import (
	"go.uber.org/zap"

	webruntime "github.com/craftkit/web-runtime"
	"github.com/craftkit/web-runtime/bridge"
	"github.com/craftkit/web-runtime/capability"
	"github.com/craftkit/web-runtime/emitter"
	"github.com/craftkit/web-runtime/errors"
	"github.com/craftkit/web-runtime/mem"
	"github.com/craftkit/web-runtime/value"
)

// Suite is a group of related bridge methods that registers itself on
// the engine, the way the built-in capability suites do.
type Suite interface {
	Bind(*bridge.Engine) error
}

type options struct {
	transport webruntime.Transport
	logger    *zap.Logger
	suites    []Suite
	closers   []func() error
}

// Option configures a Runtime under construction.
type Option func(*options)

// WithTransport sets where replies and events are written.
func WithTransport(t webruntime.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger routes bridge logging through l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSuite registers an additional capability suite.
func WithSuite(s Suite) Option {
	return func(o *options) { o.suites = append(o.suites, s) }
}

// WithFS serves the fs.* methods confined to dir.
func WithFS(dir string) Option {
	return func(o *options) { o.suites = append(o.suites, capability.NewFS(dir)) }
}

// WithDB serves the db.* methods with database files under dir.
func WithDB(dir string) Option {
	return func(o *options) {
		db := capability.NewDB(dir)
		o.suites = append(o.suites, db)
		o.closers = append(o.closers, db.Close)
	}
}

// WithWindow serves the window.* methods through the adapter. A nil
// adapter answers every method with an unsupported error.
func WithWindow(w capability.Window) Option {
	return func(o *options) { o.suites = append(o.suites, bindFunc(func(e *bridge.Engine) error { return capability.BindWindow(e, w) })) }
}

// WithTray serves the tray.* methods through the adapter.
func WithTray(t capability.Tray) Option {
	return func(o *options) { o.suites = append(o.suites, bindFunc(func(e *bridge.Engine) error { return capability.BindTray(e, t) })) }
}

// WithDialogs serves the dialog.* methods through the adapter.
func WithDialogs(d capability.Dialogs) Option {
	return func(o *options) { o.suites = append(o.suites, bindFunc(func(e *bridge.Engine) error { return capability.BindDialogs(e, d) })) }
}

// WithNotifier serves the notify.* methods through the adapter.
func WithNotifier(n capability.Notifier) Option {
	return func(o *options) { o.suites = append(o.suites, bindFunc(func(e *bridge.Engine) error { return capability.BindNotifier(e, n) })) }
}

// WithDevice serves the device.* methods through the adapter.
func WithDevice(d capability.Device) Option {
	return func(o *options) { o.suites = append(o.suites, bindFunc(func(e *bridge.Engine) error { return capability.BindDevice(e, d) })) }
}

type bindFunc func(*bridge.Engine) error

func (f bindFunc) Bind(e *bridge.Engine) error { return f(e) }

// Runtime owns the engine, the emitter, and a tracked allocation pool.
// Every runtime is independent; nothing in this package is shared
// process state.
type Runtime struct {
	engine  *bridge.Engine
	events  *emitter.Emitter
	pool    *mem.TrackingPool
	logger  *zap.Logger
	closers []func() error
}

// New builds a runtime and binds every configured suite.
func New(opts ...Option) (*Runtime, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	} else {
		// The bridge logger is package level; only an explicit option
		// may replace it.
		bridge.SetLogger(o.logger.Named("bridge"))
	}

	rt := &Runtime{
		engine:  bridge.NewEngine(),
		events:  emitter.New(),
		pool:    mem.NewTrackingPool(mem.NewPool()),
		logger:  o.logger,
		closers: o.closers,
	}
	if o.transport != nil {
		rt.engine.SetTransport(o.transport)
	}
	for _, s := range o.suites {
		if err := s.Bind(rt.engine); err != nil {
			rt.engine.Close()
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInternal, err, "binding capability suite")
		}
	}
	return rt, nil
}

// WithHTTP serves the http.fetch and http.download methods. Downloads
// are confined the same way the fs suite is, and progress reports flow
// through the runtime emitter, so this option needs the runtime itself
// and is applied after New.
func (r *Runtime) WithHTTP(dir string) error {
	h := capability.NewHTTP(capability.NewFS(dir), r.events)
	return h.Bind(r.engine)
}

// Bridge returns the protocol engine.
func (r *Runtime) Bridge() *bridge.Engine { return r.engine }

// Events returns the local event emitter.
func (r *Runtime) Events() *emitter.Emitter { return r.events }

// Pool returns the tracked allocation pool.
func (r *Runtime) Pool() *mem.TrackingPool { return r.pool }

// Emit notifies local listeners and pushes the event over the bridge
// transport. The local fan-out happens even when no transport is set.
func (r *Runtime) Emit(event string, data value.Value) error {
	r.events.Emit(event, data)
	return r.engine.Notify(event, data)
}

// Close shuts the engine down, releases every suite, and reports any
// allocations still outstanding in the pool.
func (r *Runtime) Close() error {
	var firstErr error
	if err := r.engine.Close(); err != nil {
		firstErr = err
	}
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := r.pool.Close(); err != nil {
		for _, leak := range r.pool.Leaks() {
			r.logger.Warn("allocation leaked",
				zap.String("tag", leak.Tag), zap.Int("size", leak.Size))
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
