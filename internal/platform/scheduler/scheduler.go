// Package scheduler provides a minimal in-process deferred-task scheduler: a
// priority queue of (fire time, task) drained by a single loop goroutine.
// Tasks fire exactly once after their delay and are then discarded. There is
// no persistence and no cancellation; pending tasks are dropped on shutdown.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Task is a unit of deferred work. Payload is plain data; the executor
// registered at construction decides what to do with it.
type Task struct {
	ID           string
	FireAt       time.Time
	Payload      any
	RegisteredAt time.Time
}

// ExecFunc runs a fired task. It is called on its own goroutine so a slow
// collaborator blocks only the task that called it, never the loop.
type ExecFunc func(ctx context.Context, task Task)

// taskHeap orders tasks by fire time, earliest first.
type taskHeap []Task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].FireAt.Before(h[j].FireAt) }
func (h taskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)        { *h = append(*h, x.(Task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler owns the task queue and the loop that drains it.
type Scheduler struct {
	mu     sync.Mutex
	tasks  taskHeap
	wake   chan struct{}
	exec   ExecFunc
	now    func() time.Time
	logger zerolog.Logger
}

// New creates a Scheduler that runs fired tasks through exec. Start must be
// called before scheduled tasks will fire.
func New(exec ExecFunc, logger zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		wake:   make(chan struct{}, 1),
		exec:   exec,
		now:    time.Now,
		logger: logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Schedule registers payload to fire once after delay, counted from now. It
// returns immediately; registration never blocks on execution.
func (s *Scheduler) Schedule(delay time.Duration, payload any) Task {
	now := s.now()
	t := Task{
		ID:           uuid.New().String(),
		FireAt:       now.Add(delay),
		Payload:      payload,
		RegisteredAt: now,
	}

	s.mu.Lock()
	heap.Push(&s.tasks, t)
	s.mu.Unlock()

	// Nudge the loop in case the new task is the next to fire.
	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.logger.Debug().
		Str("task_id", t.ID).
		Time("fire_at", t.FireAt).
		Msg("task scheduled")
	return t
}

// Pending returns the number of tasks waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Start runs the scheduling loop until ctx is cancelled. Cancellation drops
// all pending tasks silently.
func (s *Scheduler) Start(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		// Copy the head task while holding the lock; a concurrent Schedule
		// reorders the heap slice, so a pointer into it must not outlive
		// the critical section.
		s.mu.Lock()
		var next Task
		waiting := len(s.tasks) > 0
		if waiting {
			next = s.tasks[0]
		}
		s.mu.Unlock()

		if !waiting {
			select {
			case <-ctx.Done():
				s.drop()
				return
			case <-s.wake:
			}
			continue
		}

		wait := next.FireAt.Sub(s.now())
		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				s.drop()
				return
			case <-s.wake:
				// A task with an earlier fire time may have arrived.
				if !timer.Stop() {
					<-timer.C
				}
				continue
			case <-timer.C:
			}
		}

		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			continue
		}
		t := heap.Pop(&s.tasks).(Task)
		s.mu.Unlock()

		// Fire on a separate goroutine so one hung task cannot delay the rest.
		go s.exec(ctx, t)
	}
}

func (s *Scheduler) drop() {
	s.mu.Lock()
	n := len(s.tasks)
	s.tasks = nil
	s.mu.Unlock()
	if n > 0 {
		s.logger.Warn().Int("pending", n).Msg("scheduler stopped, pending tasks dropped")
	}
}
