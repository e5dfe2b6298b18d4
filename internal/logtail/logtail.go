package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A maxLines
// <= 0 returns every line. A missing file is not an error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is the severity detected in a console line.
type Level string

const (
	LevelNone  Level = ""
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// levelTokens maps the level words written by the console encoder, the JSON
// file encoder and the miner's own logger.
var levelTokens = map[string]Level{
	"DEBUG":    LevelDebug,
	"INFO":     LevelInfo,
	"WARN":     LevelWarn,
	"WARNING":  LevelWarn,
	"ERROR":    LevelError,
	"DPANIC":   LevelError,
	"PANIC":    LevelError,
	"FATAL":    LevelError,
	"CRITICAL": LevelError,
}

// DetectLevel finds the log level in one of the first few fields of line.
// Lines from the JSON encoder are recognised by their "level" key.
func DetectLevel(line string) Level {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LevelNone
	}
	if strings.HasPrefix(trimmed, "{") {
		if i := strings.Index(trimmed, `"level":"`); i >= 0 {
			rest := trimmed[i+len(`"level":"`):]
			if j := strings.IndexByte(rest, '"'); j > 0 {
				return levelTokens[strings.ToUpper(rest[:j])]
			}
		}
		return LevelNone
	}

	fields := strings.Fields(trimmed)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	for _, f := range fields {
		token := strings.ToUpper(strings.Trim(f, "[]:"))
		if lvl, ok := levelTokens[token]; ok {
			return lvl
		}
	}
	return LevelNone
}
