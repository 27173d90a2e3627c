package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dramabox_webapp/internal/logger"
)

// Supervisor restarts a long-running task with bounded exponential backoff.
// Its status is surfaced through the readiness endpoint instead of living
// only in log lines.
type Supervisor struct {
	name string
	run  func(ctx context.Context) error
	log  *slog.Logger

	minBackoff time.Duration
	maxBackoff time.Duration

	mu       sync.Mutex
	status   string
	restarts int

	done chan struct{}
}

func NewSupervisor(name string, run func(ctx context.Context) error) *Supervisor {
	return &Supervisor{
		name:       name,
		run:        run,
		log:        logger.With("component", "supervisor", "task", name),
		minBackoff: time.Second,
		maxBackoff: time.Minute,
		status:     "stopped",
		done:       make(chan struct{}),
	}
}

// Start runs the task in a goroutine until ctx is cancelled, restarting it
// after failures. Backoff doubles per consecutive failure and resets once a
// run survives longer than the current backoff.
func (s *Supervisor) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		backoff := s.minBackoff

		for {
			s.setStatus("running")
			started := time.Now()
			err := s.run(ctx)

			if ctx.Err() != nil {
				s.setStatus("stopped")
				return
			}

			if time.Since(started) > backoff {
				backoff = s.minBackoff
			}

			s.mu.Lock()
			s.restarts++
			s.mu.Unlock()

			s.log.Warn("task exited, restarting", "error", err, "backoff", backoff)
			s.setStatus("backoff")

			select {
			case <-ctx.Done():
				s.setStatus("stopped")
				return
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > s.maxBackoff {
				backoff = s.maxBackoff
			}
		}
	}()
}

// Wait blocks until the supervised task has fully stopped.
func (s *Supervisor) Wait(timeout time.Duration) {
	select {
	case <-s.done:
	case <-time.After(timeout):
		s.log.Warn("supervisor shutdown timeout")
	}
}

func (s *Supervisor) setStatus(v string) {
	s.mu.Lock()
	s.status = v
	s.mu.Unlock()
}

// Status reports "running", "backoff" or "stopped".
func (s *Supervisor) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Restarts reports how many times the task has been restarted.
func (s *Supervisor) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}
