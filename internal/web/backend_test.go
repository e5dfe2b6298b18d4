package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/minerui/internal/backend"
	"github.com/five82/minerui/internal/config"
	"github.com/five82/minerui/internal/state"
)

func loopbackConfig(port int) config.Config {
	return config.Config{Kind: config.KindWeb, Host: "127.0.0.1", Port: port}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func runAsync(b interface{ RunForever() error }) <-chan error {
	done := make(chan error, 1)
	go func() { done <- b.RunForever() }()
	return done
}

func TestBackend_StartServeStop(t *testing.T) {
	b := New(Options{Store: state.NewStore(10)})
	assert.Equal(t, config.KindWeb, b.Kind())
	assert.Empty(t, b.Addr())

	require.NoError(t, b.Start(context.Background(), loopbackConfig(0)))
	assert.NotEmpty(t, b.Addr())
	assert.Equal(t, "http://"+b.Addr(), b.URL())

	done := runAsync(b)

	resp, err := http.Get(b.URL() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, b.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunForever did not return after Stop")
	}

	assert.NoError(t, b.Stop(), "second Stop")
	_, err = net.DialTimeout("tcp", b.Addr(), time.Second)
	assert.Error(t, err, "server should no longer accept connections")
}

func TestBackend_StartPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	b := New(Options{})
	err = b.Start(context.Background(), loopbackConfig(port))
	require.Error(t, err)

	var startErr *backend.StartError
	require.True(t, errors.As(err, &startErr), "want *backend.StartError, got %T", err)
	assert.Equal(t, config.KindWeb, startErr.Kind)
	assert.Empty(t, b.Addr())
	assert.NoError(t, b.Stop())
}

func TestBackend_StartTwice(t *testing.T) {
	b := New(Options{})
	require.NoError(t, b.Start(context.Background(), loopbackConfig(0)))
	defer b.Stop()

	var startErr *backend.StartError
	assert.True(t, errors.As(b.Start(context.Background(), loopbackConfig(0)), &startErr))
}

func TestBackend_StopBeforeStart(t *testing.T) {
	b := New(Options{})
	assert.NoError(t, b.Stop())
	assert.Error(t, b.RunForever())
}

func TestBackend_StopBeforeRunForever(t *testing.T) {
	b := New(Options{})
	require.NoError(t, b.Start(context.Background(), loopbackConfig(0)))
	addr := b.Addr()

	require.NoError(t, b.Stop())
	assert.NoError(t, b.RunForever())

	_, err := net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err, "listener should be closed")
}

func TestBackend_ConcurrentStop(t *testing.T) {
	b := New(Options{})
	require.NoError(t, b.Start(context.Background(), loopbackConfig(0)))
	done := runAsync(b)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Stop())
		}()
	}
	wg.Wait()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunForever did not return")
	}
}

// desktopStub stands in for the terminal console, which needs a real tty.
type desktopStub struct {
	stopped chan struct{}
	once    sync.Once
}

func newDesktopStub() *desktopStub { return &desktopStub{stopped: make(chan struct{})} }

func (d *desktopStub) Kind() config.Kind { return config.KindDesktop }

func (d *desktopStub) Start(context.Context, config.Config) error { return nil }

func (d *desktopStub) RunForever() error {
	<-d.stopped
	return nil
}

func (d *desktopStub) Stop() error {
	d.once.Do(func() { close(d.stopped) })
	return nil
}

func newSelector(desktop backend.Backend) *backend.Selector {
	factory := backend.NewFactory()
	factory.Register(config.KindWeb, func() (backend.Backend, error) {
		return New(Options{Store: state.NewStore(10)}), nil
	})
	factory.Register(config.KindDesktop, func() (backend.Backend, error) {
		return desktop, nil
	})
	return backend.NewSelector(factory, nil, nil)
}

func webEnv(port int) map[string]string {
	return map[string]string{
		config.KeyBackend: "nicegui",
		config.KeyWebHost: "127.0.0.1",
		config.KeyWebPort: strconv.Itoa(port),
	}
}

func TestSelector_RunsWebConsole(t *testing.T) {
	port := freePort(t)
	sel := newSelector(newDesktopStub())

	require.NoError(t, sel.Launch(context.Background(), webEnv(port)))
	kind, ok := sel.ActiveKind()
	require.True(t, ok)
	assert.Equal(t, config.KindWeb, kind)
	assert.Equal(t, port, sel.Config().Port)

	done := runAsync(sel)
	resp, err := http.Get("http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port)) + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, sel.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunForever did not return")
	}
	assert.Equal(t, backend.StateStopped, sel.State())
	assert.NoError(t, sel.Stop())
}

func TestSelector_FallsBackWhenPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	desktop := newDesktopStub()
	sel := newSelector(desktop)
	require.NoError(t, sel.Launch(context.Background(), webEnv(ln.Addr().(*net.TCPAddr).Port)))

	kind, ok := sel.ActiveKind()
	require.True(t, ok)
	assert.Equal(t, config.KindDesktop, kind)

	attempts := sel.Attempts()
	require.Len(t, attempts, 2)
	assert.Equal(t, config.KindWeb, attempts[0].Kind)
	var startErr *backend.StartError
	assert.True(t, errors.As(attempts[0].Err, &startErr))
	assert.NoError(t, attempts[1].Err)

	require.NoError(t, sel.Stop())
	assert.NoError(t, sel.RunForever())
}
