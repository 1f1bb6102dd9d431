// Package concurrency provides the bounded in-flight limiter analyzers use
// to parallelize independent per-file I/O (§5): hashing chunks, reading
// EXIF, stat'ing. There is no shared mutable state between tasks besides
// the limiter's own counters.
package concurrency

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/archivekeeper/curator/internal/logging"
)

var log = logging.L("concurrency")

// DefaultLimit and HardCap mirror §5's bounded in-flight model: default 5
// concurrent futures, hard cap 10 regardless of what a config supplies.
const (
	DefaultLimit = 5
	HardCap      = 10
)

// Limiter bounds the number of in-flight tasks submitted via Go.
type Limiter struct {
	sem       *semaphore.Weighted
	completed atomic.Int64
	failed    atomic.Int64
}

// New creates a Limiter admitting at most `limit` concurrent tasks. A
// non-positive limit falls back to DefaultLimit; a limit above HardCap is
// capped at HardCap.
func New(limit int) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > HardCap {
		limit = HardCap
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(limit))}
}

// Task is an independent unit of per-item I/O submitted to the limiter.
type Task func(ctx context.Context) error

// Run submits tasks and blocks until all have completed or ctx is
// cancelled. Each task runs under panic recovery so one bad candidate does
// not take down the analyzer; panics are logged and counted as failures.
// Returns the number of tasks that returned a non-nil error or panicked.
func (l *Limiter) Run(ctx context.Context, tasks []Task) (failures int64, err error) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return l.failed.Load(), err
		}
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			defer l.sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					log.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
					l.failed.Add(1)
				}
			}()
			if err := t(ctx); err != nil {
				l.failed.Add(1)
				return
			}
			l.completed.Add(1)
		}(task)
	}
	wg.Wait()
	return l.failed.Load(), nil
}

// Completed returns the count of tasks that returned without error or panic.
func (l *Limiter) Completed() int64 { return l.completed.Load() }

// Failed returns the count of tasks that errored or panicked.
func (l *Limiter) Failed() int64 { return l.failed.Load() }
