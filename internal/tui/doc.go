// Package tui is the desktop console: a full-screen Bubble Tea view of the
// miner's status and console output.
//
// # Layout
//
//	minerui [RUNNING] pid 4242 xmrig  cpu 97.3%  rss 1.20 GiB  up 3h 4m  status text
//	╭──────────────────────────────────────────────────────────────────────╮
//	│ 21:00:01 INFO share accepted                                         │
//	│ 21:00:02 WARN high temperature                                       │
//	╰──────────────────────────────────────────────────────────────────────╯
//	<h> Help  <Space> Pause  </> Search  <T> Theme  <e> Exit  2 lines  auto-tail on
//
// The console pane follows the tail until the user scrolls up; Space or G
// resumes following. Lines are coloured by the level logtail.DetectLevel finds.
//
// # Lifecycle
//
// Backend.Start refuses to run unless stdin and stdout are terminals, which is
// how the selector learns that the desktop console cannot be shown. Start
// mutes the stderr log sink so zap output does not draw over the alternate
// screen; Stop and the end of RunForever unmute it. Logging to LOG_FILE is
// left alone.
//
// # Key Bindings
//
//   - h/?: Help overlay (any key closes)
//   - j/k, g/G, pgup/pgdown, ctrl+d/u: Scroll
//   - Space: Toggle auto-tail
//   - /, n/N, esc: Search the console
//   - c: Clear the console
//   - T: Cycle theme (saved to prefs)
//   - e or ctrl+c: Quit
package tui
