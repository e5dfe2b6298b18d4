package miner

import (
	"strings"
	"time"
)

// ProcessInfo is one sample of the monitored miner process.
type ProcessInfo struct {
	PID        int32     `json:"pid"`
	Name       string    `json:"name"`
	Running    bool      `json:"running"`
	Status     string    `json:"status"`
	CPUPercent float64   `json:"cpuPercent"`
	MemoryRSS  uint64    `json:"memoryRss"`
	NumThreads int32     `json:"numThreads"`
	CreatedAt  time.Time `json:"createdAt"`
	SampledAt  time.Time `json:"sampledAt"`
}

// Uptime returns how long the process has been alive at the time of sampling.
func (p ProcessInfo) Uptime() time.Duration {
	if p.CreatedAt.IsZero() || p.SampledAt.IsZero() || p.SampledAt.Before(p.CreatedAt) {
		return 0
	}
	return p.SampledAt.Sub(p.CreatedAt)
}

// StateLabel returns a short human label for the process state.
func (p ProcessInfo) StateLabel() string {
	if !p.Running {
		return "stopped"
	}
	switch strings.ToLower(strings.TrimSpace(p.Status)) {
	case "", "running", "sleep", "idle", "wait":
		return "running"
	case "stop":
		return "paused"
	case "zombie":
		return "zombie"
	default:
		return strings.ToLower(p.Status)
	}
}
