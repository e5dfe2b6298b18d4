package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/five82/minerui/internal/backend"
	"github.com/five82/minerui/internal/config"
	"github.com/five82/minerui/internal/metrics"
	"github.com/five82/minerui/internal/prefs"
	"github.com/five82/minerui/internal/state"
)

const (
	defaultPushInterval    = time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Options configure the web console.
type Options struct {
	Store   *state.Store
	Prefs   *prefs.Store
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// OnClose is called when a browser presses Stop. It runs on its own
	// goroutine so it may stop this backend.
	OnClose func()

	// PushInterval is how often websocket clients receive updates.
	PushInterval time.Duration
	// StopLimit throttles POST /api/stop per client address.
	StopLimit RateLimitConfig
	// CORS overrides DefaultCORSConfig when AllowOrigins is set.
	CORS CORSConfig
	// ShutdownTimeout bounds Stop. Defaults to 5s.
	ShutdownTimeout time.Duration
}

// Backend serves the browser console.
type Backend struct {
	opts   Options
	logger *zap.Logger
	engine *gin.Engine
	hub    *hub

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	url      string
	stopOnce sync.Once
}

var _ backend.Backend = (*Backend)(nil)

// New builds the router. It does not bind a port.
func New(opts Options) *Backend {
	if opts.Store == nil {
		opts.Store = state.NewStore(state.DefaultCapacity)
	}
	if opts.PushInterval <= 0 {
		opts.PushInterval = defaultPushInterval
	}
	if opts.StopLimit.RequestsPerSecond <= 0 {
		opts.StopLimit = DefaultStopLimit()
	}
	if len(opts.CORS.AllowOrigins) == 0 {
		opts.CORS = DefaultCORSConfig()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Backend{
		opts:   opts,
		logger: logger,
		hub:    newHub(),
	}
	b.engine = b.routes()
	return b
}

// Kind implements backend.Backend.
func (b *Backend) Kind() config.Kind { return config.KindWeb }

// Handler exposes the router, mainly for tests.
func (b *Backend) Handler() http.Handler { return b.engine }

// Start binds cfg.Addr(). A bind failure is returned as *backend.StartError
// so the selector can fall back.
func (b *Backend) Start(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.server != nil {
		return &backend.StartError{Kind: config.KindWeb, Err: errors.New("already started")}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Addr())
	if err != nil {
		return &backend.StartError{Kind: config.KindWeb, Err: err}
	}

	b.listener = ln
	b.url = "http://" + ln.Addr().String()
	b.server = &http.Server{
		Handler:           b.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	b.logger.Info("web console listening", zap.String("url", b.url))
	return nil
}

// RunForever serves until Stop is called.
func (b *Backend) RunForever() error {
	b.mu.Lock()
	server, ln := b.server, b.listener
	b.mu.Unlock()
	if server == nil {
		return errors.New("web console not started")
	}

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop disconnects websocket clients and shuts the server down. It is
// idempotent and a no-op before Start.
func (b *Backend) Stop() error {
	var stopErr error
	b.stopOnce.Do(func() {
		b.hub.closeAll()

		b.mu.Lock()
		server, ln := b.server, b.listener
		b.mu.Unlock()
		if server == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), b.opts.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			stopErr = err
		}
		// Serve may not have run yet, in which case Shutdown never saw ln.
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) && stopErr == nil {
			stopErr = err
		}
		b.logger.Info("web console stopped")
	})
	return stopErr
}

// Addr returns the bound address, or "" before Start.
func (b *Backend) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// URL returns the browser address, or "" before Start.
func (b *Backend) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}
