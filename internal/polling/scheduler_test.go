package polling

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartRejectsActiveID(t *testing.T) {
	s := NewScheduler(nil)
	defer s.StopAll()

	if err := s.Start("sensor", 50*time.Millisecond, func(context.Context) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start("sensor", 50*time.Millisecond, func(context.Context) {}); err != ErrAlreadyRunning {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestStartValidatesArguments(t *testing.T) {
	s := NewScheduler(nil)
	if err := s.Start("", time.Second, func(context.Context) {}); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := s.Start("x", 0, func(context.Context) {}); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if err := s.Start("x", time.Second, nil); err == nil {
		t.Fatal("expected error for nil action")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewScheduler(nil)
	s.Stop("never-started")

	if err := s.Start("sensor", 50*time.Millisecond, func(context.Context) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop("sensor")
	s.Stop("sensor")
	if s.Running("sensor") {
		t.Fatal("task still running after stop")
	}
}

func TestNoImmediateFire(t *testing.T) {
	s := NewScheduler(nil)
	defer s.StopAll()

	var fires int64
	if err := s.Start("sensor", 200*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&fires, 1)
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt64(&fires); n != 0 {
		t.Fatalf("task fired %d times before the first interval elapsed", n)
	}
}

func TestFiresOnSchedule(t *testing.T) {
	s := NewScheduler(nil)
	defer s.StopAll()

	var fires int64
	if err := s.Start("sensor", 20*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&fires, 1)
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if n := atomic.LoadInt64(&fires); n < 3 {
		t.Fatalf("expected at least 3 fires, got %d", n)
	}
}

func TestSlowActionDoesNotStallTicks(t *testing.T) {
	s := NewScheduler(nil)
	defer s.StopAll()

	var started int64
	if err := s.Start("sensor", 20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt64(&started, 1)
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
		}
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if n := atomic.LoadInt64(&started); n < 3 {
		t.Fatalf("ticks stalled behind a slow action: %d starts", n)
	}
}

func TestStopCancelsFutureTicks(t *testing.T) {
	s := NewScheduler(nil)

	var fires int64
	if err := s.Start("sensor", 20*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&fires, 1)
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(70 * time.Millisecond)
	s.Stop("sensor")
	after := atomic.LoadInt64(&fires)

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt64(&fires); n > after+1 {
		t.Fatalf("task kept firing after stop: %d -> %d", after, n)
	}
}

func TestRestartReplacesTask(t *testing.T) {
	s := NewScheduler(nil)
	defer s.StopAll()

	var old, fresh int64
	if err := s.Start("sensor", 20*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&old, 1)
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Restart("sensor", 20*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&fresh, 1)
	}); err != nil {
		t.Fatalf("restart: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt64(&fresh) == 0 {
		t.Fatal("restarted task never fired")
	}
	if atomic.LoadInt64(&old) > 1 {
		t.Fatalf("old task kept firing after restart: %d", atomic.LoadInt64(&old))
	}
}

func TestStopAll(t *testing.T) {
	s := NewScheduler(nil)
	for _, id := range []string{"sensor", "averages", "minmax"} {
		if err := s.Start(id, 50*time.Millisecond, func(context.Context) {}); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
	}
	s.StopAll()
	for _, id := range []string{"sensor", "averages", "minmax"} {
		if s.Running(id) {
			t.Fatalf("task %s still running after StopAll", id)
		}
	}
}
