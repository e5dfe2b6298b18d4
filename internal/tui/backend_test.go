package tui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/five82/minerui/internal/backend"
	"github.com/five82/minerui/internal/config"
	"github.com/five82/minerui/internal/logging"
)

func TestBackend_StartWithoutTerminalFails(t *testing.T) {
	sink := logging.NewTerminalSink(&bytes.Buffer{})
	b := New(Options{Input: &bytes.Buffer{}, Output: &bytes.Buffer{}, Terminal: sink})

	err := b.Start(context.Background(), config.Default())
	if err == nil {
		t.Fatalf("Start returned nil error without a terminal")
	}
	var startErr *backend.StartError
	if !errors.As(err, &startErr) || startErr.Kind != config.KindDesktop {
		t.Fatalf("error = %#v, want *backend.StartError for desktop", err)
	}
	if !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("error = %v, want ErrNoTerminal", err)
	}
	if sink.Muted() {
		t.Fatalf("terminal sink muted after failed start")
	}
}

func TestBackend_StartWithPipeFails(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	b := New(Options{Input: r, Output: w})
	if err := b.Start(context.Background(), config.Default()); !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("Start on a pipe = %v, want ErrNoTerminal", err)
	}
}

func TestBackend_StopIsIdempotent(t *testing.T) {
	sink := logging.NewTerminalSink(&bytes.Buffer{})
	sink.Mute()
	b := New(Options{Terminal: sink})

	for i := 0; i < 3; i++ {
		if err := b.Stop(); err != nil {
			t.Fatalf("Stop #%d returned %v", i, err)
		}
	}
	if sink.Muted() {
		t.Fatalf("Stop should unmute the terminal sink")
	}
}

func TestBackend_RunForeverWithoutStart(t *testing.T) {
	b := New(Options{})
	if err := b.RunForever(); err == nil {
		t.Fatalf("RunForever before Start returned nil")
	}
	if b.Kind() != config.KindDesktop {
		t.Fatalf("Kind = %v, want desktop", b.Kind())
	}
}
