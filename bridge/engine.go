package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	webruntime "github.com/craftkit/web-runtime"
	"github.com/craftkit/web-runtime/errors"
	"github.com/craftkit/web-runtime/mem"
	"github.com/craftkit/web-runtime/value"
)

// Handler executes one capability method. Params is the parsed request
// payload; the returned Value becomes the response result. Returning a
// *HandlerError chooses the error code surfaced to the caller; any other
// error maps to code 0 with its message.
//
// Params borrows arena storage that is released when the handler returns.
// Handlers that retain params past their return must Clone.
type Handler func(ctx context.Context, params value.Value) (value.Value, error)

// HandlerError is a coded application-level failure. Code must be
// non-negative; negative codes are reserved for the protocol.
type HandlerError struct {
	Data    value.Value
	Message string
	Code    int32
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler error %d: %s", e.Code, e.Message)
}

// Errorf builds a HandlerError with a formatted message.
func Errorf(code int32, format string, args ...any) *HandlerError {
	return &HandlerError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type arenaKey struct{}

// ArenaFrom returns the per-request arena attached to a handler context.
// Allocations made from it are released when the handler's request
// completes. Returns nil outside a dispatch.
func ArenaFrom(ctx context.Context) *mem.Arena {
	a, _ := ctx.Value(arenaKey{}).(*mem.Arena)
	return a
}

// Engine routes incoming Requests to registered handlers and writes exactly
// one reply per request through the transport. It is safe for concurrent
// use.
type Engine struct {
	handlers  map[string]Handler
	transport webruntime.Transport
	baseCtx   context.Context
	cancel    context.CancelFunc
	arenas    sync.Pool
	wg        sync.WaitGroup
	mu        sync.RWMutex
	writeMu   sync.Mutex
	closed    bool
}

// NewEngine creates an engine with no transport attached. Replies are
// dropped until SetTransport is called.
func NewEngine() *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		handlers: make(map[string]Handler),
		baseCtx:  ctx,
		cancel:   cancel,
		arenas: sync.Pool{
			New: func() any { return mem.NewArena(0) },
		},
	}
}

// SetTransport installs the reply sink. The engine serializes Send calls,
// so the transport sees one whole message at a time.
func (e *Engine) SetTransport(t webruntime.Transport) {
	e.writeMu.Lock()
	e.transport = t
	e.writeMu.Unlock()
}

// Register installs a handler for a dot-namespaced method name.
// Registering an already-registered method is an error.
func (e *Engine) Register(method string, h Handler) error {
	if method == "" || h == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "method name and handler required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.handlers[method]; exists {
		return errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Method(method).
			Detail("method already registered").
			Build()
	}
	e.handlers[method] = h
	return nil
}

// RegisterNamespace installs a suite of handlers under one namespace, so
// RegisterNamespace("fs", map[...]{"readFile": h}) serves "fs.readFile".
func (e *Engine) RegisterNamespace(ns string, handlers map[string]Handler) error {
	if ns == "" || strings.Contains(ns, ".") {
		return errors.InvalidInput(errors.PhaseDispatch, "namespace must be a single segment")
	}
	for name, h := range handlers {
		if err := e.Register(ns+"."+name, h); err != nil {
			return err
		}
	}
	return nil
}

// Handler looks up a registered handler by method name.
func (e *Engine) Handler(method string) (Handler, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.handlers[method]
	return h, ok
}

// Methods returns the registered method names, unordered.
func (e *Engine) Methods() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	methods := make([]string, 0, len(e.handlers))
	for m := range e.handlers {
		methods = append(methods, m)
	}
	return methods
}

// Dispatch accepts one raw wire message. Requests execute on their own
// goroutine, so overlapping requests may answer out of order; Dispatch
// itself never blocks on handler execution. Protocol failures produce an
// ErrorResponse without invoking any handler.
func (e *Engine) Dispatch(raw []byte) {
	e.dispatch(raw, false)
}

// DispatchSync is Dispatch with inline handler execution, for callers that
// need the reply written before it returns.
func (e *Engine) DispatchSync(raw []byte) {
	e.dispatch(raw, true)
}

func (e *Engine) dispatch(raw []byte, inline bool) {
	arena := e.arenas.Get().(*mem.Arena)
	scope := arena.Begin()
	release := func() {
		if err := arena.End(scope); err != nil {
			// A handler tore the scope stack; discard its state.
			Logger().Error("arena scope violation", zap.Error(err))
			arena.Reset()
		}
		e.arenas.Put(arena)
	}

	// The whole envelope, request id and method included, lives in the
	// per-request scope. Every exit path below encodes its reply before
	// release runs.
	v, err := value.ParseIn(arena, raw)
	if err != nil {
		e.replyProtocolError(err)
		release()
		return
	}
	msg, err := decodeEnvelope(v)
	if err != nil {
		e.replyProtocolError(err)
		release()
		return
	}

	req, ok := msg.(Request)
	if !ok {
		// The engine only serves requests; replies belong to a Client.
		e.replyProtocolError(errors.MalformedRequest("engine accepts only request envelopes"))
		release()
		return
	}

	e.mu.RLock()
	h, found := e.handlers[req.Method]
	closed := e.closed
	e.mu.RUnlock()

	if closed {
		e.reply(ErrorResponse{ID: req.ID, Code: CodeInternalError, Message: "engine closed"})
		release()
		return
	}
	if !found {
		Logger().Debug("method not found", zap.String("method", req.Method))
		e.reply(ErrorResponse{
			ID:      req.ID,
			Code:    CodeMethodNotFound,
			Message: errors.MethodNotFound(req.Method).Error(),
		})
		release()
		return
	}

	e.wg.Add(1)
	if inline {
		e.run(req, h, arena, release)
		return
	}
	go e.run(req, h, arena, release)
}

// run executes one handler and writes its single reply. The request's arena
// scope is released on every exit path, including handler panic.
func (e *Engine) run(req Request, h Handler, arena *mem.Arena, release func()) {
	defer e.wg.Done()

	ctx := context.WithValue(e.baseCtx, arenaKey{}, arena)

	var reply Message
	func() {
		defer func() {
			if r := recover(); r != nil {
				Logger().Error("handler panic",
					zap.String("method", req.Method),
					zap.Any("panic", r))
				reply = ErrorResponse{
					ID:      req.ID,
					Code:    CodeInternalError,
					Message: fmt.Sprintf("internal error in %s", req.Method),
				}
			}
		}()

		result, err := h(ctx, req.Params)
		if err != nil {
			reply = errorReply(req.ID, err)
			return
		}
		reply = Response{ID: req.ID, Result: result}
	}()

	// Encode copies into fresh storage, so the arena releases before the
	// write without invalidating the reply.
	encoded, encErr := Encode(reply)
	if encErr != nil {
		// Result was unencodable (e.g. NaN). Still answer the request.
		Logger().Warn("unencodable result", zap.String("method", req.Method), zap.Error(encErr))
		encoded, _ = Encode(ErrorResponse{
			ID:      req.ID,
			Code:    CodeInternalError,
			Message: encErr.Error(),
		})
	}
	release()
	e.send(encoded)
}

// errorReply maps a handler error to its wire form.
func errorReply(id string, err error) ErrorResponse {
	var he *HandlerError
	if stderrors.As(err, &he) {
		code := he.Code
		if code < 0 {
			code = CodeHandlerFailed
		}
		return ErrorResponse{ID: id, Code: code, Message: he.Message, Data: he.Data}
	}
	return ErrorResponse{ID: id, Code: CodeHandlerFailed, Message: err.Error()}
}

// replyProtocolError answers transport/protocol failures that never reach a
// handler. With no decodable id the reply carries an empty one.
func (e *Engine) replyProtocolError(err error) {
	code := CodeMalformedRequest
	var se *errors.Error
	if stderrors.As(err, &se) && se.Phase == errors.PhaseParse {
		code = CodeParseError
	}
	Logger().Debug("protocol error", zap.Error(err))
	e.reply(ErrorResponse{ID: "", Code: code, Message: err.Error()})
}

func (e *Engine) reply(msg Message) {
	encoded, err := Encode(msg)
	if err != nil {
		Logger().Error("encode reply", zap.Error(err))
		return
	}
	e.send(encoded)
}

func (e *Engine) send(data []byte) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if e.transport == nil {
		return
	}
	if err := e.transport.Send(data); err != nil {
		Logger().Warn("transport send failed", zap.Error(err))
	}
}

// Notify pushes an unsolicited event envelope through the transport. It is
// how emitter listeners forward native-side occurrences to the script side.
func (e *Engine) Notify(event string, data value.Value) error {
	encoded, err := Encode(Event{Name: event, Data: data})
	if err != nil {
		return err
	}
	e.send(encoded)
	return nil
}

// Close cancels handler contexts and waits for in-flight requests to
// drain. Requests dispatched after Close are answered with an internal
// error.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
	return nil
}
