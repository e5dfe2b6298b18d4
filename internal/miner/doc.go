// Package miner samples the process minerui is watching.
//
// # Overview
//
// The miner's own logic lives elsewhere; this package only reads operating
// system statistics for one PID through gopsutil and reports them as
// ProcessInfo values. The app poller calls FetchStatus on an interval and
// pushes each result into state.Store, where both UI backends pick it up.
//
//	Probe.FetchStatus ──> app poller ──Update──> state.Store ──> tui / web
//
// # Probe
//
// NewProbe(pid) builds a Probe for one process. A PID of zero or less
// monitors the minerui process itself, which is the layout used when the
// miner runs in-process.
//
// FetchStatus fills in what the platform can report:
//
//   - Name and Status (sleep, running, stop, zombie, ...)
//   - CPUPercent and MemoryRSS
//   - NumThreads
//   - CreatedAt, from which Uptime is derived
//
// A statistic that cannot be read is left zero rather than failing the
// sample. A process that has exited is the one hard error: FetchStatus wraps
// ErrNotRunning, which callers test with errors.Is. A process that exists but
// is no longer running (a zombie being reaped, for example) is returned with
// Running set to false.
//
// # Fetcher
//
// The poller depends on the Fetcher interface, not on *Probe, so tests can
// script samples and failures without a real process.
//
// # Labels
//
// StateLabel folds the raw process status into what the consoles show:
// "running", "paused", "zombie" or "stopped". ProcessInfo marshals to JSON
// with camelCase keys and is sent unchanged by the web API.
package miner
