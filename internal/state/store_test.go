package state

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/minerui/internal/miner"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	proc := &miner.ProcessInfo{Running: true, PID: 123}
	s.Print("first\nsecond")

	before := time.Now()
	s.Update(proc, nil)

	snap := s.Snapshot()
	if !snap.HasProcess || snap.Process.PID != 123 {
		t.Fatalf("snapshot process = %#v, want pid=123 HasProcess=true", snap.Process)
	}
	if len(snap.Console) != 2 || snap.Console[0].Text != "first" {
		t.Fatalf("snapshot console = %#v, want 2 lines", snap.Console)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Console[0].Text = "changed"
	snap2 := s.Snapshot()
	if snap2.Console[0].Text != "first" {
		t.Fatalf("Snapshot should clone console; got %q want first", snap2.Console[0].Text)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(&miner.ProcessInfo{PID: 1}, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if snap.HasProcess != prev.HasProcess || snap.Process.PID != prev.Process.PID {
		t.Fatalf("process changed on error: got %#v want %#v", snap.Process, prev.Process)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should still wrap the original")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.Update(nil, errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after one failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 2"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after two failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(&miner.ProcessInfo{Running: true}, nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_PrintSkipsBlankLines(t *testing.T) {
	var s Store
	s.Print("\n  \nhello\r\n\nworld\n")

	lines := s.LinesSince(0)
	if len(lines) != 2 {
		t.Fatalf("lines = %#v, want 2", lines)
	}
	if lines[0].Text != "hello" || lines[1].Text != "world" {
		t.Fatalf("unexpected texts %q %q", lines[0].Text, lines[1].Text)
	}
	if lines[0].Seq != 1 || lines[1].Seq != 2 {
		t.Fatalf("seqs = %d,%d want 1,2", lines[0].Seq, lines[1].Seq)
	}
}

func TestStore_RingBufferDropsOldest(t *testing.T) {
	s := NewStore(3)
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		s.Print(text)
	}

	snap := s.Snapshot()
	if len(snap.Console) != 3 {
		t.Fatalf("console length = %d, want 3", len(snap.Console))
	}
	var texts []string
	for _, line := range snap.Console {
		texts = append(texts, line.Text)
	}
	if strings.Join(texts, "") != "cde" {
		t.Fatalf("console = %v, want c d e", texts)
	}
	if snap.Console[0].Seq != 3 || snap.LastSeq != 5 {
		t.Fatalf("first seq = %d last = %d, want 3 and 5", snap.Console[0].Seq, snap.LastSeq)
	}
}

func TestStore_LinesSince(t *testing.T) {
	s := NewStore(10)
	s.Print("one\ntwo\nthree")

	if got := s.LinesSince(1); len(got) != 2 || got[0].Text != "two" {
		t.Fatalf("LinesSince(1) = %#v", got)
	}
	if got := s.LinesSince(3); got != nil {
		t.Fatalf("LinesSince(last) = %#v, want nil", got)
	}
	if got := s.LinesSince(99); got != nil {
		t.Fatalf("LinesSince(future) = %#v, want nil", got)
	}
}

func TestStore_WriteBuffersPartialLines(t *testing.T) {
	var s Store
	if _, err := s.Write([]byte("partial")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s.LastSeq() != 0 {
		t.Fatalf("partial write should not emit a line yet")
	}
	n, err := s.Write([]byte(" line\nnext"))
	if err != nil || n != len(" line\nnext") {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := s.LinesSince(0); len(got) != 1 || got[0].Text != "partial line" {
		t.Fatalf("lines = %#v, want one joined line", got)
	}
	if err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := s.LinesSince(1); len(got) != 1 || got[0].Text != "next" {
		t.Fatalf("lines after Sync = %#v", got)
	}
}

func TestStore_ClearKeepsSequence(t *testing.T) {
	var s Store
	s.Print("a\nb")
	s.Clear()
	if snap := s.Snapshot(); len(snap.Console) != 0 {
		t.Fatalf("console after Clear = %#v", snap.Console)
	}
	s.Print("c")
	if got := s.LinesSince(0); len(got) != 1 || got[0].Seq != 3 {
		t.Fatalf("lines = %#v, want seq 3", got)
	}
}

func TestStore_SetStatusTrims(t *testing.T) {
	var s Store
	s.SetStatus("  mining block 42  ")
	if got := s.Snapshot().StatusText; got != "mining block 42" {
		t.Fatalf("StatusText = %q", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(50)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Print("line")
				s.Update(&miner.ProcessInfo{Running: true}, nil)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Snapshot()
				_ = s.LinesSince(uint64(j))
			}
		}()
	}
	wg.Wait()
	if s.LastSeq() != 400 {
		t.Fatalf("LastSeq = %d, want 400", s.LastSeq())
	}
	if n := len(s.Snapshot().Console); n != 50 {
		t.Fatalf("console length = %d, want 50", n)
	}
}
