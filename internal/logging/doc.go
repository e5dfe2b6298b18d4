// Package logging builds the zap logger used across minerui.
//
// # Overview
//
// New returns a *Logger, a zap.Logger that also knows which sink it writes
// to. Every package receives the embedded *zap.Logger; only the application
// wiring deals with Logger itself, for Terminal and Close.
//
// # Sinks
//
// Entries go to exactly one primary sink, plus an optional console tee:
//
//	                  ┌──> LOG_FILE (zapcore.Lock)           when File is set
//	zap.Logger ──Tee──┤──> stderr (TerminalSink, mutable)    otherwise
//	                  └──> Console, e.g. *state.Store        when Console is set
//
// The primary sink uses JSON in production and zap's coloured console
// encoder in development. The console tee always uses a compact single-line
// form, "15:04:05 WARN message key=value", which both UI consoles display and
// logtail.DetectLevel can classify.
//
// # Muting
//
// The terminal console takes over the screen while it runs, so stderr output
// would draw over it. TerminalSink drops writes while muted; the tui backend
// mutes it in Start and unmutes it when it stops.
//
// A log file never shares the screen, so it is never muted. When File is set
// Terminal returns nil, and Mute and Unmute on a nil sink do nothing:
//
//	log.Terminal().Mute() // safe either way
//
// # Levels
//
// Level accepts the names zapcore.Level understands (debug, info, warn,
// error, dpanic, panic, fatal). An empty level means info. An unknown level
// is an error from New; config.LoadRuntime normalizes LOG_LEVEL first so the
// application normally never sees one.
//
// # Lifecycle
//
//	log, err := logging.New(logging.Config{Level: "debug", Console: store})
//	if err != nil {
//		return err
//	}
//	defer log.Close()
//
// Close syncs buffered entries and closes the log file. NewNop returns a
// logger that discards everything, for tests and for the last-resort
// fallback when no sink can be opened.
package logging
