package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/five82/minerui/internal/metrics"
	"github.com/five82/minerui/internal/miner"
	"github.com/five82/minerui/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second},
		{"many failures capped", 10, 30 * time.Second},
		{"huge failure count capped", 1000, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	for _, base := range []time.Duration{time.Millisecond, 2 * time.Second, time.Minute} {
		for failures := 0; failures <= 20; failures++ {
			got := calculateBackoff(failures, base)
			if got > maxBackoff && got != base {
				t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, base, got, maxBackoff)
			}
		}
	}
}

// scriptedFetcher returns errs in order, then succeeds.
type scriptedFetcher struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (f *scriptedFetcher) FetchStatus(context.Context) (*miner.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &miner.ProcessInfo{PID: 7, Name: "miner", Running: true, CPUPercent: 3.5, MemoryRSS: 1024}, nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartPoller_RecordsFailuresThenRecovers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewStore(10)
	m := metrics.New()
	fetcher := &scriptedFetcher{errs: []error{miner.ErrNotRunning, miner.ErrNotRunning}}

	done := StartPoller(ctx, PollerOptions{
		Store:    store,
		Fetcher:  fetcher,
		Interval: time.Millisecond,
		Metrics:  m,
	})

	waitFor(t, "recovery", func() bool {
		snap := store.Snapshot()
		return snap.HasProcess && snap.ConsecutiveFailures == 0
	})

	snap := store.Snapshot()
	if snap.Process.PID != 7 || snap.LastError != nil {
		t.Fatalf("snapshot = %+v, want pid 7 and no error", snap)
	}
	if got := testutil.ToFloat64(m.ProbeFailures); got != 2 {
		t.Fatalf("probe failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.MinerRSS); got != 1024 {
		t.Fatalf("miner rss = %v, want 1024", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not exit after cancel")
	}
}

func TestStartPoller_OfflineAfterRepeatedFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewStore(10)
	fail := errors.New("boom")
	fetcher := &scriptedFetcher{errs: []error{fail, fail, fail, fail, fail, fail, fail, fail}}

	done := StartPoller(ctx, PollerOptions{Store: store, Fetcher: fetcher, Interval: time.Millisecond})
	waitFor(t, "offline", func() bool { return store.Snapshot().IsOffline() })
	if !errors.Is(store.Snapshot().LastError, fail) {
		t.Fatalf("LastError = %v, want boom", store.Snapshot().LastError)
	}

	cancel()
	<-done
}

func TestStartPoller_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &scriptedFetcher{}
	done := StartPoller(ctx, PollerOptions{Store: state.NewStore(10), Fetcher: fetcher, Interval: time.Hour})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not exit")
	}
	if fetcher.Calls() > 1 {
		t.Fatalf("calls = %d, want at most 1", fetcher.Calls())
	}
}
