// Package runtime assembles the bridge engine, event emitter, and
// tracked memory pool into one host runtime.
//
// # Quick Start
//
//	rt, err := runtime.New(
//	    runtime.WithTransport(transport),
//	    runtime.WithFS("/srv/app/data"),
//	    runtime.WithDB("/srv/app/data"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	// Feed raw messages from the page into the engine.
//	rt.Bridge().Dispatch(raw)
//
//	// Push an event to the page and local listeners.
//	rt.Emit("app.ready", payload)
//
// # Suites
//
// Capability suites implement Suite and register their dot-namespaced
// methods when the runtime is built. The built-in fs, db, and http
// suites have dedicated options; anything else goes through WithSuite.
//
// # Thread Safety
//
// Runtime is safe for concurrent use after New returns. Multiple
// runtimes in one process are fully independent.
package runtime
