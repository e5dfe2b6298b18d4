package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Runtime holds the ambient settings that do not influence backend selection.
type Runtime struct {
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev       bool   `envconfig:"LOG_DEV" default:"false"`
	LogFile      string `envconfig:"LOG_FILE"`
	MinerPID     int32  `envconfig:"MINER_PID" default:"0"`
	PollSeconds  int    `envconfig:"POLL_SECONDS" default:"2"`
	ConsoleLines int    `envconfig:"CONSOLE_LINES" default:"1000"`
	PrefsPath    string `envconfig:"PREFS_PATH"`
}

const (
	defaultPollSeconds  = 2
	defaultConsoleLines = 1000
)

// LoadRuntime reads runtime settings from the process environment.
func LoadRuntime() (Runtime, error) {
	var rt Runtime
	if err := envconfig.Process("", &rt); err != nil {
		return DefaultRuntime(), fmt.Errorf("load runtime config: %w", err)
	}
	rt, err := rt.normalized()
	if err != nil {
		return rt, fmt.Errorf("load runtime config: %w", err)
	}
	return rt, nil
}

// DefaultRuntime returns the runtime settings used when the environment is empty
// or unparsable.
func DefaultRuntime() Runtime {
	return Runtime{
		LogLevel:     "info",
		PollSeconds:  defaultPollSeconds,
		ConsoleLines: defaultConsoleLines,
	}
}

// PollInterval returns the process sampling interval.
func (r Runtime) PollInterval() time.Duration {
	if r.PollSeconds <= 0 {
		return defaultPollSeconds * time.Second
	}
	return time.Duration(r.PollSeconds) * time.Second
}

// logLevels are the level names zap accepts.
var logLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {}, "dpanic": {}, "panic": {}, "fatal": {},
}

// normalized fills defaults. An unknown log level is replaced with info and
// reported; every other field is usable.
func (r Runtime) normalized() (Runtime, error) {
	var err error
	r.LogLevel = strings.ToLower(strings.TrimSpace(r.LogLevel))
	switch r.LogLevel {
	case "":
		r.LogLevel = "info"
	case "warning":
		r.LogLevel = "warn"
	}
	if _, ok := logLevels[r.LogLevel]; !ok {
		err = fmt.Errorf("LOG_LEVEL %q is not a log level; using info", r.LogLevel)
		r.LogLevel = "info"
	}
	if r.PollSeconds <= 0 {
		r.PollSeconds = defaultPollSeconds
	}
	if r.ConsoleLines <= 0 {
		r.ConsoleLines = defaultConsoleLines
	}
	if r.MinerPID < 0 {
		r.MinerPID = 0
	}
	if strings.TrimSpace(r.LogFile) != "" {
		r.LogFile = mustExpand(r.LogFile)
	}
	r.PrefsPath = strings.TrimSpace(r.PrefsPath)
	return r, err
}
