package miner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Fetcher samples the monitored process. *Probe implements it; tests can swap
// in their own.
type Fetcher interface {
	FetchStatus(ctx context.Context) (*ProcessInfo, error)
}

// Ensure Probe implements Fetcher at compile time.
var _ Fetcher = (*Probe)(nil)

// ErrNotRunning is returned when the monitored PID no longer exists.
var ErrNotRunning = errors.New("miner process not running")

// Probe reads process statistics for a single PID.
type Probe struct {
	pid int32
	now func() time.Time
}

// NewProbe builds a Probe for pid. A pid <= 0 monitors the current process.
func NewProbe(pid int32) *Probe {
	if pid <= 0 {
		pid = int32(os.Getpid())
	}
	return &Probe{pid: pid, now: time.Now}
}

// PID returns the monitored process id.
func (p *Probe) PID() int32 {
	if p == nil {
		return 0
	}
	return p.pid
}

// FetchStatus samples the process. Statistics that cannot be read on the
// current platform are left zero; only a missing process is an error.
func (p *Probe) FetchStatus(ctx context.Context) (*ProcessInfo, error) {
	if p == nil {
		return nil, fmt.Errorf("probe is nil")
	}
	proc, err := process.NewProcessWithContext(ctx, p.pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, fmt.Errorf("pid %d: %w", p.pid, ErrNotRunning)
		}
		return nil, fmt.Errorf("open process %d: %w", p.pid, err)
	}

	running, err := proc.IsRunningWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query process %d: %w", p.pid, err)
	}
	info := &ProcessInfo{PID: p.pid, Running: running, SampledAt: p.now()}
	if !running {
		return info, nil
	}

	if name, err := proc.NameWithContext(ctx); err == nil {
		info.Name = name
	}
	if statuses, err := proc.StatusWithContext(ctx); err == nil && len(statuses) > 0 {
		info.Status = strings.Join(statuses, ",")
	}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		info.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		info.MemoryRSS = mem.RSS
	}
	if threads, err := proc.NumThreadsWithContext(ctx); err == nil {
		info.NumThreads = threads
	}
	if created, err := proc.CreateTimeWithContext(ctx); err == nil && created > 0 {
		info.CreatedAt = time.UnixMilli(created)
	}
	return info, nil
}
