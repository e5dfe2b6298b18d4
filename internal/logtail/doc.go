// Package logtail reads the end of log files and classifies log lines.
//
// # Reading
//
// Read returns the last maxLines lines of a file in one pass using a ring
// buffer, so memory stays proportional to maxLines rather than file size.
// At startup minerui uses it to replay the tail of LOG_FILE into the console,
// so a restarted UI shows what happened just before.
//
//	lines, err := logtail.Read("/var/log/miner/miner.log", 200)
//
// The ring works like this:
//
//	1. Allocate a slice of maxLines entries
//	2. For each line, store it at count % maxLines
//	3. At EOF, copy the ring out oldest first
//
// A final line without a trailing newline is still returned. Lines up to
// 1 MiB are accepted; a longer line fails the read. A maxLines of zero or less
// returns every line. A missing file is not an error and yields no lines,
// since LOG_FILE does not exist until the first run writes to it.
//
// # Levels
//
// DetectLevel looks for a level word (INFO, WARN, ERROR, ...) in the first
// few fields of a line, or for the "level" key in a JSON entry. Both consoles
// use it to colour lines; lines without a level render plainly.
package logtail
