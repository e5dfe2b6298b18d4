package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_EmptyEnvironmentUsesDefaults(t *testing.T) {
	cfg, warnings := Load(map[string]string{})
	if cfg != Default() {
		t.Fatalf("Load({}) = %#v, want %#v", cfg, Default())
	}
	if cfg.Kind != KindDesktop {
		t.Fatalf("Kind = %v, want desktop", cfg.Kind)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
}

func TestLoad_BackendTokensAreCaseInsensitive(t *testing.T) {
	cases := []struct {
		value string
		want  Kind
	}{
		{"nicegui", KindWeb},
		{"NiceGUI", KindWeb},
		{"NICEGUI", KindWeb},
		{"  nicegui  ", KindWeb},
		{"web", KindWeb},
		{"tkinter", KindDesktop},
		{"TKinter", KindDesktop},
		{"desktop", KindDesktop},
		{"", KindDesktop},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			cfg, warnings := Load(map[string]string{KeyBackend: tc.value})
			if cfg.Kind != tc.want {
				t.Fatalf("Kind = %v, want %v", cfg.Kind, tc.want)
			}
			if len(warnings) != 0 {
				t.Fatalf("warnings = %v, want none", warnings)
			}
		})
	}
}

func TestLoad_UnknownBackendFallsBackToDesktopWithWarning(t *testing.T) {
	cfg, warnings := Load(map[string]string{KeyBackend: "qt"})
	if cfg.Kind != KindDesktop {
		t.Fatalf("Kind = %v, want desktop", cfg.Kind)
	}
	if len(warnings) != 1 || warnings[0].Key != KeyBackend {
		t.Fatalf("warnings = %v, want one %s warning", warnings, KeyBackend)
	}
	if !strings.Contains(warnings[0].String(), `"qt"`) {
		t.Fatalf("warning %q should quote the bad value", warnings[0].String())
	}
}

func TestLoad_WebSettings(t *testing.T) {
	cfg, warnings := Load(map[string]string{
		KeyBackend: "nicegui",
		KeyWebHost: "0.0.0.0",
		KeyWebPort: "9000",
	})
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	want := Config{Kind: KindWeb, Host: "0.0.0.0", Port: 9000}
	if cfg != want {
		t.Fatalf("Load = %#v, want %#v", cfg, want)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Fatalf("Addr = %q, want 0.0.0.0:9000", cfg.Addr())
	}
	if cfg.URL() != "http://0.0.0.0:9000" {
		t.Fatalf("URL = %q", cfg.URL())
	}
}

func TestLoad_MalformedPortUsesDefault(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1", "65536", "99999999999", "80.5", "8o8o"} {
		t.Run(raw, func(t *testing.T) {
			cfg, warnings := Load(map[string]string{KeyWebPort: raw})
			if cfg.Port != defaultWebPort {
				t.Fatalf("Port = %d, want %d", cfg.Port, defaultWebPort)
			}
			if len(warnings) != 1 || warnings[0].Key != KeyWebPort {
				t.Fatalf("warnings = %v, want one %s warning", warnings, KeyWebPort)
			}
		})
	}
}

func TestLoad_PortBoundaries(t *testing.T) {
	for raw, want := range map[string]int{"1": 1, "65535": 65535, " 443 ": 443} {
		cfg, warnings := Load(map[string]string{KeyWebPort: raw})
		if cfg.Port != want || len(warnings) != 0 {
			t.Fatalf("Load(%q) port = %d warnings = %v, want %d and none", raw, cfg.Port, warnings, want)
		}
	}
}

func TestLoad_BlankValuesUseDefaultsSilently(t *testing.T) {
	cfg, warnings := Load(map[string]string{KeyWebHost: "   ", KeyWebPort: "  "})
	if cfg.Host != defaultWebHost || cfg.Port != defaultWebPort {
		t.Fatalf("Load = %#v, want defaults", cfg)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
}

func TestLoad_IsDeterministic(t *testing.T) {
	env := map[string]string{KeyBackend: "NiceGui", KeyWebHost: "10.0.0.2", KeyWebPort: "bogus"}
	first, firstWarnings := Load(env)
	for i := 0; i < 10; i++ {
		cfg, warnings := Load(env)
		if cfg != first || !reflect.DeepEqual(warnings, firstWarnings) {
			t.Fatalf("Load run %d = %#v %v, want %#v %v", i, cfg, warnings, first, firstWarnings)
		}
	}
}

func TestHelpers(t *testing.T) {
	env := map[string]string{KeyBackend: "nicegui", KeyWebPort: "9100"}
	if !IsWebEnabled(env) {
		t.Fatalf("IsWebEnabled = false, want true")
	}
	if IsWebEnabled(map[string]string{}) {
		t.Fatalf("IsWebEnabled({}) = true, want false")
	}
	host, port := WebAddr(env)
	if host != defaultWebHost || port != 9100 {
		t.Fatalf("WebAddr = %s:%d, want %s:9100", host, port, defaultWebHost)
	}
}

func TestEnviron_ReflectsProcessEnvironment(t *testing.T) {
	t.Setenv(KeyBackend, "nicegui")
	env := Environ()
	if env[KeyBackend] != "nicegui" {
		t.Fatalf("Environ()[%s] = %q, want nicegui", KeyBackend, env[KeyBackend])
	}
}

func TestKindString(t *testing.T) {
	if KindDesktop.String() != "desktop" || KindWeb.String() != "web" {
		t.Fatalf("unexpected kind names %q %q", KindDesktop, KindWeb)
	}
	if got := Kind(7).String(); got != "kind(7)" {
		t.Fatalf("Kind(7).String() = %q", got)
	}
}

func TestLoadRuntime_Defaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "LOG_DEV", "LOG_FILE", "MINER_PID", "POLL_SECONDS", "CONSOLE_LINES", "PREFS_PATH"} {
		unsetEnv(t, key)
	}
	rt, err := LoadRuntime()
	if err != nil {
		t.Fatalf("LoadRuntime returned error: %v", err)
	}
	if rt.LogLevel != "info" || rt.PollSeconds != 2 || rt.ConsoleLines != 1000 {
		t.Fatalf("LoadRuntime = %#v, want defaults", rt)
	}
	if rt.PollInterval() != 2*time.Second {
		t.Fatalf("PollInterval = %v, want 2s", rt.PollInterval())
	}
}

func TestLoadRuntime_ParsesAndExpands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("LOG_DEV", "true")
	t.Setenv("LOG_FILE", "~/minerui.log")
	t.Setenv("MINER_PID", "4242")
	t.Setenv("POLL_SECONDS", "5")
	t.Setenv("CONSOLE_LINES", "50")

	rt, err := LoadRuntime()
	if err != nil {
		t.Fatalf("LoadRuntime returned error: %v", err)
	}
	if rt.LogLevel != "debug" || !rt.LogDev || rt.MinerPID != 4242 || rt.ConsoleLines != 50 {
		t.Fatalf("LoadRuntime = %#v", rt)
	}
	if rt.LogFile != filepath.Join(home, "minerui.log") {
		t.Fatalf("LogFile = %q, want it under HOME", rt.LogFile)
	}
	if rt.PollInterval() != 5*time.Second {
		t.Fatalf("PollInterval = %v, want 5s", rt.PollInterval())
	}
}

func TestLoadRuntime_InvalidFallsBackToDefaults(t *testing.T) {
	t.Setenv("POLL_SECONDS", "often")
	rt, err := LoadRuntime()
	if err == nil {
		t.Fatalf("LoadRuntime returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "load runtime config") {
		t.Fatalf("error = %q, want it to mention load runtime config", err)
	}
	if rt != DefaultRuntime() {
		t.Fatalf("LoadRuntime = %#v, want DefaultRuntime", rt)
	}
}

func TestLoadRuntime_UnknownLogLevelUsesInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("POLL_SECONDS", "7")

	rt, err := LoadRuntime()
	if err == nil || !strings.Contains(err.Error(), `"verbose"`) {
		t.Fatalf("LoadRuntime error = %v, want a warning naming the bad level", err)
	}
	if rt.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", rt.LogLevel)
	}
	if rt.PollSeconds != 7 {
		t.Fatalf("PollSeconds = %d, want the other settings kept", rt.PollSeconds)
	}
}

func TestLoadRuntime_LogLevelAliases(t *testing.T) {
	for raw, want := range map[string]string{"WARNING": "warn", "Error": "error", "dpanic": "dpanic"} {
		t.Setenv("LOG_LEVEL", raw)
		rt, err := LoadRuntime()
		if err != nil {
			t.Fatalf("LoadRuntime(%q) returned error: %v", raw, err)
		}
		if rt.LogLevel != want {
			t.Fatalf("LoadRuntime(%q) level = %q, want %q", raw, rt.LogLevel, want)
		}
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("Unsetenv(%s): %v", key, err)
	}
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, prev)
		}
	})
}
