package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSupervisor_RestartsFailingTask(t *testing.T) {
	var runs atomic.Int32

	s := NewSupervisor("test", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	})
	s.minBackoff = time.Millisecond
	s.maxBackoff = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if s.Restarts() < 2 {
		t.Fatalf("expected restart counter to advance, got %d", s.Restarts())
	}

	cancel()
	s.Wait(time.Second)

	if got := s.Status(); got != "stopped" {
		t.Fatalf("expected status stopped after cancel, got %q", got)
	}
}

func TestSupervisor_StopsOnCancelWithoutRestart(t *testing.T) {
	var runs atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	s := NewSupervisor("test", func(ctx context.Context) error {
		runs.Add(1)
		<-ctx.Done()
		return nil
	})
	s.Start(ctx)

	time.Sleep(10 * time.Millisecond)
	cancel()
	s.Wait(time.Second)

	if got := runs.Load(); got != 1 {
		t.Fatalf("expected a single run, got %d", got)
	}
	if s.Status() != "stopped" {
		t.Fatalf("expected status stopped, got %q", s.Status())
	}
}
