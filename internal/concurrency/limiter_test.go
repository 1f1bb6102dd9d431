package concurrency

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestRunExecutesAllTasks(t *testing.T) {
	l := New(3)
	var count atomic.Int64
	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			count.Add(1)
			return nil
		}
	}
	failures, err := l.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failures != 0 {
		t.Fatalf("expected no failures, got %d", failures)
	}
	if count.Load() != 20 {
		t.Fatalf("expected 20 tasks to run, got %d", count.Load())
	}
	if l.Completed() != 20 {
		t.Fatalf("Completed() = %d, want 20", l.Completed())
	}
}

func TestRunCountsErrorsAsFailures(t *testing.T) {
	l := New(2)
	tasks := []Task{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return fmt.Errorf("boom") },
	}
	failures, err := l.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failures != 1 {
		t.Fatalf("expected 1 failure, got %d", failures)
	}
}

func TestRunRecoversPanicsAsFailures(t *testing.T) {
	l := New(2)
	tasks := []Task{
		func(ctx context.Context) error { panic("bad candidate") },
	}
	failures, err := l.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failures != 1 {
		t.Fatalf("expected panic to count as a failure, got %d", failures)
	}
}

func TestNewClampsToHardCap(t *testing.T) {
	l := New(9999)
	// Indirect check: a limiter built with an absurd limit should still
	// behave correctly under HardCap concurrent tasks without deadlocking.
	tasks := make([]Task, HardCap*2)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error { return nil }
	}
	if _, err := l.Run(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewDefaultsNonPositiveLimit(t *testing.T) {
	l := New(0)
	if l.sem == nil {
		t.Fatal("expected a semaphore to be initialized")
	}
}
