// Package backend chooses and owns the UI backend.
//
// # Overview
//
// minerui has two consoles: the terminal console (config.KindDesktop) and
// the browser console (config.KindWeb). This package decides which one runs,
// starts it, and later stops it. It knows nothing about how either console
// draws; both satisfy the Backend interface.
//
// # Factory
//
// A Factory maps each config.Kind to a Constructor. The web backend is only
// registered when it is compiled in; a missing entry behaves like a backend
// whose dependencies failed to load and yields *UnavailableError. A
// constructor that panics is reported the same way.
//
// # Selection
//
// Selector runs the startup state machine:
//
//	Uninitialized -> Selecting -> Running(kind) -> Stopped
//	                     \
//	                      -> Failed
//
// Launch reads config.Config from the environment, logging one warning per
// setting it had to ignore, then tries the configured kind:
//
//	preferred kind ──ok──────────────────────────> Running(preferred)
//	      │
//	      └─fail─> stop it, warn once ─> desktop ──ok──> Running(desktop)
//	                                        │
//	                                        └─fail──> Failed
//
// Only the desktop console is a fallback. When it was the preferred kind
// there is nothing left to try. A backend whose Start failed is always
// stopped before the next attempt, so a half-bound port or a grabbed terminal
// is released.
//
// # Errors
//
//   - *UnavailableError: the constructor failed or the kind is not built in
//   - *StartError: Start failed; plain errors from Start are wrapped in one
//   - *FatalSelectionError: every attempt failed; Attempts lists them in order
//
// FatalSelectionError unwraps to every attempt's cause, so
// errors.As(err, &startErr) finds the web backend's bind failure even after
// the desktop fallback also failed.
//
// # Concurrency
//
// Stop is safe from any goroutine and may be called more than once. Stop
// during Launch is remembered and applied as soon as a backend starts.
// RunForever blocks in the active backend's loop and leaves the selector
// Stopped when that loop ends, whether the user quit or Stop was called.
//
// # Metrics
//
// When a *metrics.Metrics is supplied the selector records each attempt's
// outcome, each fallback, and which kind is active. A nil Metrics records
// nothing.
package backend
