package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/five82/minerui/internal/backend"
	"github.com/five82/minerui/internal/config"
	"github.com/five82/minerui/internal/logging"
	"github.com/five82/minerui/internal/logtail"
	"github.com/five82/minerui/internal/metrics"
	"github.com/five82/minerui/internal/miner"
	"github.com/five82/minerui/internal/prefs"
	"github.com/five82/minerui/internal/state"
	"github.com/five82/minerui/internal/tui"
)

const uiRefresh = time.Second

// Options configure the minerui application.
type Options struct {
	PID       int32 // monitored pid; zero uses MINER_PID, then this process
	PollEvery int   // seconds; zero uses POLL_SECONDS

	// Env selects the UI backend. Nil reads the process environment.
	Env map[string]string

	// Input and Output are handed to the terminal console. Nil uses the
	// process stdin and stdout.
	Input  io.Reader
	Output io.Writer
}

// deps are shared by every backend constructor.
type deps struct {
	store    *state.Store
	prefs    *prefs.Store
	logger   *zap.Logger
	terminal *logging.TerminalSink
	metrics  *metrics.Metrics
	onClose  func()
	dev      bool
	input    io.Reader
	output   io.Writer
}

// Run starts the poller, selects a UI backend and blocks until the UI exits
// or ctx is cancelled. It returns *backend.FatalSelectionError when no
// backend could start.
func Run(ctx context.Context, opts Options) error {
	rt, rtErr := config.LoadRuntime()
	if opts.PID > 0 {
		rt.MinerPID = opts.PID
	}
	if opts.PollEvery > 0 {
		rt.PollSeconds = opts.PollEvery
	}

	store := state.NewStore(rt.ConsoleLines)
	replayErr := replayLog(store, rt.LogFile, rt.ConsoleLines)

	log, logErr := newLogger(logging.Config{
		Level:       rt.LogLevel,
		Development: rt.LogDev,
		File:        rt.LogFile,
		Console:     store,
	})
	defer log.Close()
	logger := log.Logger

	if rtErr != nil {
		logger.Warn("invalid runtime settings, using defaults", zap.Error(rtErr))
	}
	if logErr != nil {
		logger.Warn("logger setup failed, logging to stderr", zap.String("path", rt.LogFile), zap.Error(logErr))
	}
	if replayErr != nil {
		logger.Warn("could not replay previous log", zap.String("path", rt.LogFile), zap.Error(replayErr))
	}

	prefsPath := rt.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.NewStore(prefsPath)
	if err != nil {
		logger.Warn("could not load preferences, using defaults", zap.Error(err))
	}

	m := metrics.New()
	probe := miner.NewProbe(rt.MinerPID)
	store.SetStatus(fmt.Sprintf("Monitoring pid %d", probe.PID()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pollDone := StartPoller(ctx, PollerOptions{
		Store:    store,
		Fetcher:  probe,
		Interval: rt.PollInterval(),
		Logger:   logger.Named("poller"),
		Metrics:  m,
	})
	defer func() { <-pollDone }()

	d := deps{
		store:    store,
		prefs:    userPrefs,
		logger:   logger,
		terminal: log.Terminal(),
		metrics:  m,
		onClose:  cancel,
		dev:      rt.LogDev,
		input:    opts.Input,
		output:   opts.Output,
	}
	factory := backend.NewFactory()
	registerDesktop(factory, d)
	registerWeb(factory, d)

	selector := backend.NewSelector(factory, logger.Named("selector"), m)

	env := opts.Env
	if env == nil {
		env = config.Environ()
	}
	if err := selector.Launch(ctx, env); err != nil {
		cancel()
		return err
	}
	kind, _ := selector.ActiveKind()
	logger.Info("minerui started",
		zap.Stringer("backend", kind),
		zap.Int32("pid", probe.PID()),
		zap.Duration("poll", rt.PollInterval()),
	)

	runDone := make(chan struct{})
	defer close(runDone)
	go func() {
		select {
		case <-ctx.Done():
			if err := selector.Stop(); err != nil {
				logger.Warn("stop ui backend", zap.Error(err))
			}
		case <-runDone:
		}
	}()

	err = selector.RunForever()
	cancel()
	return err
}

func registerDesktop(f *backend.Factory, d deps) {
	f.Register(config.KindDesktop, func() (backend.Backend, error) {
		return tui.New(tui.Options{
			Store:    d.store,
			Prefs:    d.prefs,
			Logger:   d.logger.Named("tui"),
			Terminal: d.terminal,
			PollTick: uiRefresh,
			Input:    d.input,
			Output:   d.output,
		}), nil
	})
}

// newLogger builds the logger for cfg. If that fails it falls back to stderr
// at info level and returns the original error for the caller to report.
func newLogger(cfg logging.Config) (*logging.Logger, error) {
	log, err := logging.New(cfg)
	if err == nil {
		return log, nil
	}
	fallback := logging.DefaultConfig()
	fallback.Development = cfg.Development
	fallback.Console = cfg.Console
	log, fbErr := logging.New(fallback)
	if fbErr != nil {
		return logging.NewNop(), err
	}
	return log, err
}

// replayLog copies the tail of a previous run's log into the console.
func replayLog(store *state.Store, path string, maxLines int) error {
	if path == "" {
		return nil
	}
	lines, err := logtail.Read(path, maxLines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		store.Print(line)
	}
	return nil
}
