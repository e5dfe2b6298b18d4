package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind identifies a UI backend variant.
type Kind int

const (
	// KindDesktop is the local terminal console. It needs no optional
	// dependency and is the fallback for every other kind.
	KindDesktop Kind = iota
	// KindWeb is the browser console served over HTTP.
	KindWeb
)

func (k Kind) String() string {
	switch k {
	case KindDesktop:
		return "desktop"
	case KindWeb:
		return "web"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Environment keys read by Load.
const (
	KeyBackend = "UI_BACKEND"
	KeyWebHost = "WEBUI_HOST"
	KeyWebPort = "WEBUI_PORT"
)

const (
	defaultBackendToken = "tkinter"
	defaultWebHost      = "127.0.0.1"
	defaultWebPort      = 8080
)

var (
	webTokens     = map[string]struct{}{"nicegui": {}, "web": {}}
	desktopTokens = map[string]struct{}{"tkinter": {}, "desktop": {}, "tui": {}}
)

// Config selects the UI backend. Host and Port only matter for KindWeb.
type Config struct {
	Kind Kind
	Host string
	Port int
}

// ParseWarning records an environment value that was replaced by its default.
type ParseWarning struct {
	Key    string
	Value  string
	Reason string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("%s=%q: %s", w.Key, w.Value, w.Reason)
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{Kind: KindDesktop, Host: defaultWebHost, Port: defaultWebPort}
}

// Load builds a Config from environment key/value pairs. It never fails:
// malformed values fall back to their defaults and are reported as warnings.
func Load(env map[string]string) (Config, []ParseWarning) {
	cfg := Default()
	var warnings []ParseWarning

	if raw, ok := env[KeyBackend]; ok {
		token := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case token == "":
		case isToken(webTokens, token):
			cfg.Kind = KindWeb
		case isToken(desktopTokens, token):
			cfg.Kind = KindDesktop
		default:
			warnings = append(warnings, ParseWarning{
				Key:    KeyBackend,
				Value:  raw,
				Reason: fmt.Sprintf("unknown backend, valid options: %q, %q; using %s", defaultBackendToken, "nicegui", KindDesktop),
			})
		}
	}

	if host := strings.TrimSpace(env[KeyWebHost]); host != "" {
		cfg.Host = host
	}

	if raw, ok := env[KeyWebPort]; ok && strings.TrimSpace(raw) != "" {
		port, err := parsePort(raw)
		if err != nil {
			warnings = append(warnings, ParseWarning{
				Key:    KeyWebPort,
				Value:  raw,
				Reason: fmt.Sprintf("%v; using %d", err, defaultWebPort),
			})
		} else {
			cfg.Port = port
		}
	}

	return cfg, warnings
}

// Addr returns the host:port the web backend binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the browser address for the web backend.
func (c Config) URL() string {
	return "http://" + c.Addr()
}

// Environ returns the process environment as a map suitable for Load.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[key] = value
	}
	return env
}

// IsWebEnabled reports whether env selects the web backend.
func IsWebEnabled(env map[string]string) bool {
	cfg, _ := Load(env)
	return cfg.Kind == KindWeb
}

// WebAddr returns the web host and port configured in env.
func WebAddr(env map[string]string) (string, int) {
	cfg, _ := Load(env)
	return cfg.Host, cfg.Port
}

func isToken(set map[string]struct{}, token string) bool {
	_, ok := set[token]
	return ok
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
