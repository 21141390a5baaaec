// Package capability provides the native capability handler suites invoked
// through the bridge by dot-namespaced method name.
//
// Three suites are self-contained and run in-process: the filesystem suite
// (fs.*) over a confined root, the database suite (db.*) on an embedded
// SQLite engine, and the HTTP client suite (http.*), whose downloads report
// progress through the event emitter rather than the response channel.
//
// The platform surfaces — window control, tray, dialogs, notifications, and
// mobile device features — are adapter interfaces the embedder implements.
// The Bind helpers register their bridge methods and translate params and
// results; an adapter that is not provided answers every call with an
// unsupported error rather than method-not-found, so the script side can
// distinguish "platform lacks this" from "no such capability".
package capability
