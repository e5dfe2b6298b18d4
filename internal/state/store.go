package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/five82/minerui/internal/miner"
)

// DefaultCapacity is the console size used by a zero-value Store.
const DefaultCapacity = 1000

// Line is one console entry. Seq increases by one per line and never repeats
// within a Store.
type Line struct {
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	StatusText          string
	Process             miner.ProcessInfo
	HasProcess          bool
	Console             []Line
	LastSeq             uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the miner could not be sampled for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot and the console buffer.
type Store struct {
	mu       sync.RWMutex
	capacity int
	snapshot Snapshot
	lines    []Line
	nextSeq  uint64
	partial  string
}

// NewStore returns a Store that keeps at most capacity console lines.
// A capacity <= 0 uses DefaultCapacity.
func NewStore(capacity int) *Store {
	return &Store{capacity: capacity}
}

// Update records a process sample. When err is non-nil the previous sample is
// kept but the error is recorded for visibility.
func (s *Store) Update(proc *miner.ProcessInfo, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if proc != nil {
		s.snapshot.Process = *proc
		s.snapshot.HasProcess = true
	} else {
		s.snapshot.Process = miner.ProcessInfo{}
		s.snapshot.HasProcess = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// SetStatus replaces the one-line status text shown in both consoles.
func (s *Store) SetStatus(text string) {
	s.mu.Lock()
	s.snapshot.StatusText = strings.TrimSpace(text)
	s.mu.Unlock()
}

// Print appends text to the console. Multi-line text becomes several lines;
// blank lines are dropped.
func (s *Store) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		s.appendLocked(line)
	}
}

// Write implements io.Writer so the Store can sit behind a zap core. Output
// without a trailing newline is held until the next write.
func (s *Store) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.partial + string(p)
	for {
		idx := strings.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		s.appendLocked(buf[:idx])
		buf = buf[idx+1:]
	}
	s.partial = buf
	return len(p), nil
}

// Sync flushes any held partial line into the console.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.partial != "" {
		s.appendLocked(s.partial)
		s.partial = ""
	}
	return nil
}

// Clear empties the console. Sequence numbers keep increasing.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.partial = ""
	s.mu.Unlock()
}

// LastSeq returns the sequence number of the newest console line, or 0.
func (s *Store) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSeq
}

// LinesSince returns the console lines with Seq greater than seq.
func (s *Store) LinesSince(seq uint64) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.lines)
	for i, line := range s.lines {
		if line.Seq > seq {
			start = i
			break
		}
	}
	return cloneLines(s.lines[start:])
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Console = cloneLines(s.lines)
	snap.LastSeq = s.nextSeq
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) appendLocked(text string) {
	text = strings.TrimRight(text, "\r")
	if strings.TrimSpace(text) == "" {
		return
	}
	s.nextSeq++
	s.lines = append(s.lines, Line{Seq: s.nextSeq, Time: time.Now(), Text: text})

	limit := s.capacity
	if limit <= 0 {
		limit = DefaultCapacity
	}
	if over := len(s.lines) - limit; over > 0 {
		s.lines = append(s.lines[:0:0], s.lines[over:]...)
	}
}

func cloneLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	dup := make([]Line, len(lines))
	copy(dup, lines)
	return dup
}
