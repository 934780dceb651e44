package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunTicksAtRoughlyFixedRate(t *testing.T) {
	var count int32
	s := New(2*time.Millisecond, func() error {
		atomic.AddInt32(&count, 1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_ = s.Run(ctx)

	n := atomic.LoadInt32(&count)
	if n < 15 || n > 40 {
		t.Errorf("tick count = %d, expected roughly 25 over 50ms at 2ms period", n)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := New(time.Millisecond, func() error { return nil })
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Errorf("expected context cancellation error, got nil")
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

func TestOverrunCallback(t *testing.T) {
	var overrunCalled int32
	s := New(time.Millisecond, func() error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	s.OnOverrun = func(d time.Duration) {
		atomic.AddInt32(&overrunCalled, 1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	if atomic.LoadInt32(&overrunCalled) == 0 {
		t.Errorf("expected OnOverrun to fire at least once")
	}
}
