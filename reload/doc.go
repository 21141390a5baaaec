// Package reload watches project directories for changes and pushes
// reload signals to connected pages over websockets.
//
// The Watcher follows every configured root recursively, coalesces
// rapid bursts of filesystem events into one trigger, and classifies a
// burst as style-only when every changed path is a stylesheet so pages
// can swap CSS without a full reload. The Broadcaster accepts websocket
// clients and fans each trigger out; a slow or broken client is
// disconnected without affecting the others. Server ties the two
// together behind a single Run call.
package reload
