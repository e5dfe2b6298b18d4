package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/five82/minerui/internal/backend"
	"github.com/five82/minerui/internal/config"
	"github.com/five82/minerui/internal/logging"
	"github.com/five82/minerui/internal/prefs"
	"github.com/five82/minerui/internal/state"
)

// ErrNoTerminal is wrapped in the StartError returned when stdin or stdout is
// not an interactive terminal.
var ErrNoTerminal = errors.New("no interactive terminal")

// Options configure the terminal console.
type Options struct {
	Store    *state.Store
	Prefs    *prefs.Store
	Logger   *zap.Logger
	Terminal *logging.TerminalSink // muted while the console owns the screen
	PollTick time.Duration

	// Input and Output default to os.Stdin and os.Stdout.
	Input  io.Reader
	Output io.Writer
}

// Backend is the desktop console.
type Backend struct {
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	program  *tea.Program
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

var _ backend.Backend = (*Backend)(nil)

// New constructs an unstarted console. It does not touch the terminal.
func New(opts Options) *Backend {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{opts: opts, logger: logger}
}

// Kind implements backend.Backend.
func (b *Backend) Kind() config.Kind { return config.KindDesktop }

// Start checks for a terminal and prepares the Bubble Tea program.
func (b *Backend) Start(ctx context.Context, _ config.Config) error {
	if !isTerminal(b.opts.Input) || !isTerminal(b.opts.Output) {
		return &backend.StartError{Kind: config.KindDesktop, Err: ErrNoTerminal}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.program != nil {
		return &backend.StartError{Kind: config.KindDesktop, Err: errors.New("already started")}
	}

	b.ctx, b.cancel = context.WithCancel(ctx)
	model := NewModel(ModelOptions{
		Store:    b.opts.Store,
		Prefs:    b.opts.Prefs,
		Logger:   b.logger,
		PollTick: b.opts.PollTick,
	})
	b.program = tea.NewProgram(model,
		tea.WithContext(b.ctx),
		tea.WithInput(b.opts.Input),
		tea.WithOutput(b.opts.Output),
		tea.WithAltScreen(),
	)
	b.opts.Terminal.Mute()
	return nil
}

// RunForever runs the console until the user quits or Stop is called.
func (b *Backend) RunForever() error {
	b.mu.Lock()
	program, ctx := b.program, b.ctx
	b.mu.Unlock()
	if program == nil {
		return errors.New("terminal console not started")
	}

	_, err := program.Run()
	b.opts.Terminal.Unmute()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Stop ends the program and restores terminal logging. It is idempotent.
func (b *Backend) Stop() error {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		cancel := b.cancel
		b.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		b.opts.Terminal.Unmute()
	})
	return nil
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(v any) bool {
	f, ok := v.(fdWriter)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
