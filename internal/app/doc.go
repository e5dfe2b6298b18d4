// Package app is the composition root for minerui.
//
// Run wires the ambient pieces together and hands control to the backend
// selector:
//
//	Run()
//	 ├─> config.LoadRuntime()   LOG_*, MINER_PID, POLL_SECONDS, ...
//	 ├─> state.NewStore()       shared status and console buffer
//	 ├─> replayLog()            tail of LOG_FILE into the console
//	 ├─> logging.New()          zap, teed into the console
//	 ├─> prefs.NewStore()       theme and dark mode
//	 ├─> StartPoller()          gopsutil samples every POLL_SECONDS
//	 ├─> backend.Selector       UI_BACKEND, fallback to desktop
//	 └─> Selector.RunForever()  blocks until quit, Stop button or signal
//
// # Polling
//
// The poller samples the miner process and records the result in the store.
// A failed sample keeps the previous one and bumps the failure count, which
// the consoles show as "offline" after two misses. The wait between samples
// doubles per consecutive failure, capped at 30 seconds, and resets on the
// first success.
//
// # Logging Fallback
//
// Bad logging settings never stop minerui from starting. When logging.New
// rejects the configuration, for example because LOG_FILE cannot be opened,
// Run logs to stderr at info level instead and warns about the failure.
//
// # Shutdown
//
// Cancelling the context passed to Run, or pressing Stop in the web console,
// stops the active backend. Run then waits for the poller and closes the log
// file. A *backend.FatalSelectionError is returned when neither the
// configured backend nor the terminal fallback could start.
//
// The web backend is registered unless built with the noweb tag.
package app
