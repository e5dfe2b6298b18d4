package backend

import (
	"context"

	"github.com/five82/minerui/internal/config"
)

// Backend is a UI that can be started, run until it exits, and stopped.
type Backend interface {
	// Kind reports which variant this is.
	Kind() config.Kind
	// Start prepares the UI without blocking for its lifetime. Any failure
	// is returned as *StartError.
	Start(ctx context.Context, cfg config.Config) error
	// RunForever blocks until Stop is called or the UI exits on its own.
	RunForever() error
	// Stop releases the UI. It is idempotent and may be called from another
	// goroutine while RunForever is blocked.
	Stop() error
}

// Constructor builds an unstarted Backend. It must not bind listeners or
// touch the terminal.
type Constructor func() (Backend, error)
