// Package state provides the thread-safe store shared by the poller, the
// logger and whichever UI backend is running.
//
// # Overview
//
// Store holds three things: the latest miner process sample, a one-line status
// text, and the console, a bounded buffer of log lines. Producers are the app
// poller (Update), the application (SetStatus, Print) and the zap console tee
// (Write). Consumers are the terminal console, which polls Snapshot on a tick,
// and the web console, which streams LinesSince over a websocket.
//
//	Poller ──Update──┐
//	Logger ──Write───┼──> Store ──Snapshot/LinesSince──> tui / web
//	App ─────Print───┘
//
// # Console Sequence Numbers
//
// Every console line gets a sequence number one greater than the previous
// line. Numbers are never reused, even after Clear or after the oldest lines
// fall off the ring. A web client that remembers the last sequence it saw can
// ask for LinesSince(seq) and receive exactly the lines it missed that are
// still buffered.
//
// # Update Semantics
//
// Update keeps the last good process sample when the poll fails and counts
// consecutive failures. IsOffline reports two or more in a row.
//
// # Zero Value
//
// A zero Store is ready to use and keeps DefaultCapacity console lines.
// Snapshot and LinesSince always return copies.
package state
