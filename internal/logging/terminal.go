package logging

import (
	"io"
	"sync"
)

// TerminalSink is an io.Writer that can be muted. While muted, writes are
// dropped and reported as successful.
type TerminalSink struct {
	mu    sync.Mutex
	w     io.Writer
	muted bool
}

// NewTerminalSink wraps w.
func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{w: w}
}

func (t *TerminalSink) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.muted || t.w == nil {
		return len(p), nil
	}
	return t.w.Write(p)
}

// Sync flushes the underlying writer when it supports it.
func (t *TerminalSink) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.w.(interface{ Sync() error }); ok && !t.muted {
		return s.Sync()
	}
	return nil
}

// Mute drops subsequent writes.
func (t *TerminalSink) Mute() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.muted = true
	t.mu.Unlock()
}

// Unmute resumes writing.
func (t *TerminalSink) Unmute() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.muted = false
	t.mu.Unlock()
}

// Muted reports whether writes are currently dropped.
func (t *TerminalSink) Muted() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.muted
}
