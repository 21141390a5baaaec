// Package bridge implements the request/response/event protocol connecting
// script-side invocations to native capability handlers.
//
// # Wire Format
//
// Messages are JSON objects in one of four shapes:
//
//	Request:  {"id": string, "method": string, "params": <value>}
//	Response: {"id": string, "result": <value>}
//	Error:    {"id": string, "error": {"code": int, "message": string, "data": <value>|null}}
//	Event:    {"event": string, "data": <value>}
//
// Method names are dot-namespaced ("fs.readFile", "window.setTitle"). The id
// is a caller-chosen correlation token; the engine never generates or reuses
// it, and exactly one Response or Error is produced per accepted Request.
//
// # Dispatch Model
//
// Handlers run on their own goroutine and may block on I/O, so overlapping
// requests interleave and responses are correlated by id, not arrival order.
// Replies pass through the Transport under a write lock, one whole message
// per Send. Each dispatch owns an arena scope that is released when the
// handler finishes, including on panic, so abandoned requests cannot leak.
//
// # Error Codes
//
// Negative codes are protocol-level failures that never reach a handler
// (parse error, malformed envelope, unknown method). Zero and positive codes
// belong to handlers; return a *HandlerError to choose the code, message,
// and structured data surfaced to the caller.
package bridge
