// Package config turns environment variables into the settings minerui runs with.
//
// # Backend Selection
//
// Load reads three keys from an environment mapping and never fails:
//
//   - UI_BACKEND: "nicegui" or "web" selects the browser console; "tkinter",
//     "desktop", "tui" or nothing selects the terminal console. Matching is
//     case-insensitive. Unknown values select the terminal console and produce
//     a ParseWarning.
//   - WEBUI_HOST: bind address for the web backend (default 127.0.0.1).
//   - WEBUI_PORT: bind port for the web backend (default 8080). Values that are
//     not an integer in 1-65535 are replaced by the default and reported.
//
// Warnings are returned next to the Config so the caller decides how to log
// them. The same mapping always yields the same Config.
//
// # Runtime Settings
//
// LoadRuntime reads the remaining ambient settings with envconfig:
//
//   - LOG_LEVEL, LOG_DEV, LOG_FILE: logger level, console encoding, output file
//   - MINER_PID: process to monitor (0 monitors minerui itself)
//   - POLL_SECONDS: sampling interval for the process probe
//   - CONSOLE_LINES: size of the in-memory console buffer
//   - PREFS_PATH: override for ~/.config/minerui/prefs.toml
//
// A parse failure returns DefaultRuntime together with the error, so startup
// can continue with defaults after logging it.
//
// LOG_LEVEL is matched case-insensitively and "warning" means warn. A level
// zap does not know is replaced by info and reported the same way, with the
// rest of the settings kept.
//
// # Usage Example
//
//	cfg, warnings := config.Load(config.Environ())
//	for _, w := range warnings {
//		logger.Warn("ignoring environment value", zap.Stringer("warning", w))
//	}
//	fmt.Println(cfg.Kind, cfg.Addr())
package config
