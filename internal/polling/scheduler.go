package polling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned when starting a task id that is active.
var ErrAlreadyRunning = errors.New("polling: task already running")

// Action is one unit of repeated work. It receives the task context, which
// ends when the task is stopped; an action already in flight is not forcibly
// aborted beyond that context.
type Action func(ctx context.Context)

type task struct {
	interval time.Duration
	cancel   context.CancelFunc
}

// Scheduler owns a set of named repeating tasks, each independently
// startable and stoppable. A tick fires its action in a fresh goroutine, so a
// slow action never delays the next tick and overlapping runs are possible.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	logger *log.Logger
}

// NewScheduler constructs a scheduler.
func NewScheduler(logger *log.Logger) *Scheduler {
	return &Scheduler{
		tasks:  make(map[string]*task),
		logger: logger,
	}
}

// Start begins firing fn every interval, the first fire a full interval after
// the call. It fails with ErrAlreadyRunning when the id is active.
func (s *Scheduler) Start(id string, interval time.Duration, fn Action) error {
	if id == "" {
		return errors.New("polling: empty task id")
	}
	if interval <= 0 {
		return fmt.Errorf("polling: task %s: interval must be positive", id)
	}
	if fn == nil {
		return fmt.Errorf("polling: task %s: nil action", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, active := s.tasks[id]; active {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.tasks[id] = &task{interval: interval, cancel: cancel}
	if s.logger != nil {
		s.logger.Printf("polling: task %s started interval=%s", id, interval)
	}
	go s.run(ctx, id, interval, fn)
	return nil
}

// Stop cancels future ticks of the task. Stopping an inactive id is a no-op.
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	t, active := s.tasks[id]
	if active {
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	if active {
		t.cancel()
		if s.logger != nil {
			s.logger.Printf("polling: task %s stopped", id)
		}
	}
}

// Restart atomically stops then starts the task with a new interval.
func (s *Scheduler) Restart(id string, interval time.Duration, fn Action) error {
	s.Stop(id)
	return s.Start(id, interval, fn)
}

// Running reports whether the task id is active.
func (s *Scheduler) Running(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.tasks[id]
	return active
}

// StopAll cancels every active task.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	stopped := make([]*task, 0, len(s.tasks))
	for id, t := range s.tasks {
		stopped = append(stopped, t)
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	for _, t := range stopped {
		t.cancel()
	}
}

func (s *Scheduler) run(ctx context.Context, id string, interval time.Duration, fn Action) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Fire without waiting for the previous run: a stalled or failed
			// action must never alter the schedule.
			go fn(ctx)
		}
	}
}
