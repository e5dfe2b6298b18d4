package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/minerui/internal/config"
	"github.com/five82/minerui/internal/metrics"
)

// State is the selector lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateSelecting
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSelecting:
		return "selecting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotRunning is returned by RunForever when no backend is active.
var ErrNotRunning = errors.New("no ui backend running")

// Selector picks the configured backend, falls back to the desktop console
// when it cannot start, and owns the running instance.
type Selector struct {
	factory *Factory
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu            sync.Mutex
	state         State
	cfg           config.Config
	active        Backend
	attempts      []Attempt
	stopRequested bool
}

// NewSelector creates a selector over factory. logger and m may be nil.
func NewSelector(factory *Factory, logger *zap.Logger, m *metrics.Metrics) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = NewFactory()
	}
	return &Selector{factory: factory, logger: logger, metrics: m}
}

// Launch reads the configuration from env and starts a backend. It returns
// nil once a backend is running, or *FatalSelectionError when neither the
// preferred backend nor the desktop fallback could start. Launch may only be
// called once.
func (s *Selector) Launch(ctx context.Context, env map[string]string) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("launch: selector is %s", state)
	}
	s.state = StateSelecting
	s.mu.Unlock()

	cfg, warnings := config.Load(env)
	for _, w := range warnings {
		s.logger.Warn("ignoring ui setting", zap.String("key", w.Key), zap.String("value", w.Value), zap.String("reason", w.Reason))
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	preferred := cfg.Kind
	b, err := s.attempt(ctx, preferred, cfg)
	if err != nil && preferred != config.KindDesktop {
		s.logger.Warn("ui backend unavailable, falling back to desktop console",
			zap.Stringer("preferred", preferred),
			zap.Error(err),
		)
		s.metrics.RecordFallback()
		b, err = s.attempt(ctx, config.KindDesktop, cfg)
	}

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		fatal := &FatalSelectionError{Attempts: append([]Attempt(nil), s.attempts...)}
		s.mu.Unlock()
		s.logger.Error("no ui backend could start", zap.Error(fatal))
		return fatal
	}
	if s.stopRequested {
		s.state = StateStopped
		s.mu.Unlock()
		if stopErr := b.Stop(); stopErr != nil {
			s.logger.Debug("stop after cancelled launch", zap.Error(stopErr))
		}
		return nil
	}
	s.active = b
	s.state = StateRunning
	s.mu.Unlock()

	s.metrics.SetActive(b.Kind().String())
	s.logger.Info("ui backend running", zap.Stringer("kind", b.Kind()))
	return nil
}

// attempt constructs and starts one backend. A backend whose Start fails is
// stopped before attempt returns.
func (s *Selector) attempt(ctx context.Context, kind config.Kind, cfg config.Config) (Backend, error) {
	b, err := s.factory.Create(kind)
	if err != nil {
		s.record(kind, err, metrics.OutcomeUnavailable)
		return nil, err
	}

	if err := b.Start(ctx, cfg); err != nil {
		err = asStartError(kind, err)
		if stopErr := b.Stop(); stopErr != nil {
			s.logger.Debug("stop failed backend", zap.Stringer("kind", kind), zap.Error(stopErr))
		}
		s.record(kind, err, metrics.OutcomeStartFailed)
		return nil, err
	}

	s.record(kind, nil, metrics.OutcomeStarted)
	return b, nil
}

func (s *Selector) record(kind config.Kind, err error, outcome string) {
	s.mu.Lock()
	s.attempts = append(s.attempts, Attempt{Kind: kind, Err: err})
	s.mu.Unlock()
	s.metrics.RecordAttempt(kind.String(), outcome)
}

// RunForever blocks in the active backend's loop. When the loop returns the
// selector is Stopped. It returns nil right away if Stop already ran.
func (s *Selector) RunForever() error {
	s.mu.Lock()
	if s.state == StateStopped && s.active != nil {
		s.mu.Unlock()
		return nil
	}
	if s.state != StateRunning || s.active == nil {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w (selector is %s)", ErrNotRunning, state)
	}
	b := s.active
	s.mu.Unlock()

	runErr := b.RunForever()

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
	s.metrics.SetActive("")

	if err := b.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Stop stops the active backend. It is safe to call more than once and from
// any goroutine. Stop during Launch takes effect as soon as a backend starts.
func (s *Selector) Stop() error {
	s.mu.Lock()
	switch s.state {
	case StateUninitialized:
		s.state = StateStopped
		s.mu.Unlock()
		return nil
	case StateSelecting:
		s.stopRequested = true
		s.mu.Unlock()
		return nil
	case StateRunning:
		s.state = StateStopped
		b := s.active
		s.mu.Unlock()
		s.metrics.SetActive("")
		s.logger.Info("stopping ui backend", zap.Stringer("kind", b.Kind()))
		return b.Stop()
	default:
		s.mu.Unlock()
		return nil
	}
}

// State returns the current lifecycle state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveKind returns the kind that was started. ok is false when no backend
// ever started.
func (s *Selector) ActiveKind() (kind config.Kind, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return config.KindDesktop, false
	}
	return s.active.Kind(), true
}

// Config returns the configuration read by Launch.
func (s *Selector) Config() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Attempts returns the selection log in order.
func (s *Selector) Attempts() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attempt(nil), s.attempts...)
}
