// Package web implements the browser console backend.
//
// # Lifecycle
//
// New builds a gin router without binding a port. Start binds the configured
// address synchronously so a port already in use surfaces as a
// *backend.StartError and the selector can fall back to the terminal console.
// RunForever serves until Stop, which disconnects websocket clients and shuts
// the server down gracefully, waiting at most ShutdownTimeout.
//
//	New ──> Start (bind) ──> RunForever (serve) ──> Stop (close hub, Shutdown)
//
// POST /api/stop does not stop the server itself. It calls Options.OnClose
// in its own goroutine, because Shutdown waits for in-flight handlers and the
// stop request is one of them.
//
// # Routes
//
//	GET  /               embedded HTML console
//	GET  /health         liveness
//	GET  /ws             websocket; pushes status and new console lines
//	GET  /metrics        Prometheus exposition, when Metrics is set
//	GET  /api/status     current snapshot
//	GET  /api/console    console lines after ?since=N
//	GET  /api/prefs      stored preferences
//	PUT  /api/prefs      {"dark_mode": bool}
//	POST /api/stop       rate limited; calls Options.OnClose
//
// # Websocket Protocol
//
// Each connection gets a uuid and two goroutines. The reader only answers
// {"type":"ping"}; the writer is the sole goroutine writing to the
// connection.
//
//	server -> {"type":"hello","client_id":"..."}
//	server -> {"type":"update","status":{...},"lines":[...]}   every PushInterval
//	client -> {"type":"ping"}
//	server -> {"type":"pong"}
//
// Updates carry only console lines with a sequence number above the last one
// that client was sent, so a slow client never receives a line twice.
//
// # Middleware
//
// Requests pass through gin.Recovery, then CORS (any origin by default), then
// request metrics, then the zap access log. The stop endpoint also has a
// per-client token bucket from golang.org/x/time/rate; a client over the
// limit gets 429.
package web
