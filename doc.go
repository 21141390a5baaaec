// Package webruntime is the native runtime core that sits beneath a webview
// surface and exposes host capabilities to it.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	webruntime/          Root package with core Allocator and Transport interfaces
//	├── runtime/         High-level coordinator owning engine, emitter, and pool
//	├── bridge/          Request/response/event protocol engine and caller client
//	├── value/           Dynamically-typed Value model and JSON codec
//	├── mem/             Pooled allocator, scope arena, leak-tracking wrapper
//	├── emitter/         In-process publish/subscribe event emitter
//	├── capability/      Built-in capability handler suites (fs, db, http, ...)
//	├── reload/          Development-mode file watcher and reload broadcaster
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Create a runtime, register capabilities, and feed it wire messages:
//
//	rt, err := runtime.New(
//	    runtime.WithFS("/app/data"),
//	    runtime.WithTransport(webruntime.TransportFunc(func(reply []byte) error {
//	        return webview.Post(reply)
//	    })),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	rt.Bridge().Dispatch(incoming)
//
// # Thread Safety
//
// The bridge engine and emitter are safe for concurrent use. A mem.Pool or
// mem.Arena instance is owned by exactly one logical flow; handlers needing
// transient allocation receive a per-dispatch arena scope rather than sharing
// a pool across overlapping requests.
//
// # Memory Model
//
// Values parsed into an arena scope are valid only until the scope closes.
// Callers that retain Array or Object values past the producing scope must
// deep-copy them with Value.Clone first.
package webruntime
