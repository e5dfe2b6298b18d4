package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/five82/minerui/internal/metrics"
	"github.com/five82/minerui/internal/miner"
	"github.com/five82/minerui/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// PollerOptions configure StartPoller.
type PollerOptions struct {
	Store    *state.Store
	Fetcher  miner.Fetcher
	Interval time.Duration // zero uses 2s
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// StartPoller launches a background goroutine that samples the miner and
// records the result in the store. It returns immediately; the returned
// channel is closed once the goroutine exits after ctx is cancelled.
//
// Consecutive failures stretch the wait exponentially, capped at 30s.
func StartPoller(ctx context.Context, opts PollerOptions) <-chan struct{} {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		failures := 0
		for {
			err := refresh(ctx, opts)
			if ctx.Err() != nil {
				return
			}
			switch {
			case err != nil:
				failures++
				if failures == 1 {
					logger.Warn("miner poll failed", zap.Error(err))
				} else {
					logger.Debug("miner poll failed", zap.Error(err), zap.Int("failures", failures))
				}
			case failures > 0:
				logger.Info("miner poll recovered", zap.Int("after_failures", failures))
				failures = 0
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
	return done
}

func refresh(ctx context.Context, opts PollerOptions) error {
	info, err := opts.Fetcher.FetchStatus(ctx)
	if err != nil && errors.Is(err, context.Canceled) {
		return err
	}
	opts.Store.Update(info, err)

	var cpu float64
	var rss uint64
	if info != nil {
		cpu, rss = info.CPUPercent, info.MemoryRSS
	}
	opts.Metrics.RecordProbe(cpu, rss, err)
	return err
}

// calculateBackoff returns base doubled once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
