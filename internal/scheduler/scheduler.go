// Package scheduler runs cooperative tasks with explicit suspend points.
//
// A task is a StepFunc that performs one unit of work per call and reports
// whether it has finished. The embedding loop calls Tick, which steps every
// live task once on the caller's goroutine. Between two steps a task is
// suspended; cancellation is observed only at those points, never mid-step.
//
// Basic usage:
//
//	sched := scheduler.New(logger)
//	sched.Go(ctx, "load Game", func(ctx context.Context) (bool, error) {
//	    return op.Done(), nil
//	}, func(err error) { ... })
//
//	for sched.Len() > 0 {
//	    sched.Tick()
//	}
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/logging"
)

// StepFunc performs one unit of work. Returning done=true or a non-nil error
// finishes the task.
type StepFunc func(ctx context.Context) (done bool, err error)

// DoneFunc receives the task's outcome: nil on success, the step's error,
// or ctx.Err() when the task was cancelled while suspended.
type DoneFunc func(err error)

// Task is a handle to a scheduled task.
type Task struct {
	id     uint64
	name   string
	ctx    context.Context
	step   StepFunc
	done   DoneFunc
	steps  int
	closed atomic.Bool
}

// Name returns the task's name.
func (t *Task) Name() string { return t.name }

// Steps returns how many times the task has been stepped.
func (t *Task) Steps() int { return t.steps }

// Finished reports whether the task has completed, failed or been cancelled.
func (t *Task) Finished() bool { return t.closed.Load() }

// Scheduler steps cooperative tasks in spawn order.
type Scheduler struct {
	mu      sync.Mutex
	tasks   []*Task
	pending []*Task
	nextID  uint64
	logger  *logging.Logger
}

// New creates an empty scheduler.
func New(logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scheduler{logger: logger.WithComponent("scheduler")}
}

// Go schedules a task. It first runs on the next Tick, including when Go is
// called from inside a step. done may be nil.
func (s *Scheduler) Go(ctx context.Context, name string, step StepFunc, done DoneFunc) *Task {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := &Task{
		id:   s.nextID,
		name: name,
		ctx:  ctx,
		step: step,
		done: done,
	}
	s.pending = append(s.pending, t)
	s.logger.Debug("task scheduled", "task", name, "task_id", t.id)
	return t
}

// Tick steps every live task once, in spawn order, and returns the number of
// tasks still live afterwards. A task whose context is done is finished with
// ctx.Err() instead of being stepped.
func (s *Scheduler) Tick() int {
	s.mu.Lock()
	s.tasks = append(s.tasks, s.pending...)
	s.pending = nil
	current := make([]*Task, len(s.tasks))
	copy(current, s.tasks)
	s.mu.Unlock()

	for _, t := range current {
		if t.closed.Load() {
			continue
		}
		if err := t.ctx.Err(); err != nil {
			s.finish(t, err)
			continue
		}
		done, err := s.stepOnce(t)
		if err != nil || done {
			s.finish(t, err)
		}
	}

	s.mu.Lock()
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.closed.Load() {
			live = append(live, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
	n := len(s.tasks) + len(s.pending)
	s.mu.Unlock()
	return n
}

// stepOnce runs one step, converting a panic into an error.
func (s *Scheduler) stepOnce(t *Task) (done bool, err error) {
	t.steps++
	var pc panics.Catcher
	pc.Try(func() { done, err = t.step(t.ctx) })
	if r := pc.Recovered(); r != nil {
		s.logger.Error("task panicked", "task", t.name, "panic", fmt.Sprint(r.Value), "stack", string(r.Stack))
		return true, r.AsError()
	}
	return done, err
}

func (s *Scheduler) finish(t *Task, err error) {
	if !t.closed.CompareAndSwap(false, true) {
		return
	}
	switch {
	case err == nil:
		s.logger.Debug("task finished", "task", t.name, "steps", t.steps)
	case errors.IsCancellation(err):
		s.logger.Debug("task canceled", "task", t.name, "steps", t.steps, "reason", err.Error())
	default:
		s.logger.Debug("task failed", "task", t.name, "steps", t.steps, "error", err)
	}
	if t.done != nil {
		t.done(err)
	}
}

// Len returns the number of live tasks, including tasks not yet stepped.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	for _, t := range s.tasks {
		if !t.closed.Load() {
			n++
		}
	}
	return n
}

// ErrNotIdle is returned by RunUntilIdle when tasks remain after maxTicks.
var ErrNotIdle = errors.New("scheduler not idle")

// RunUntilIdle ticks until no task is live or maxTicks ticks have run.
// It returns the number of ticks performed.
func (s *Scheduler) RunUntilIdle(maxTicks int) (int, error) {
	ticks := 0
	for s.Len() > 0 {
		if ticks >= maxTicks {
			return ticks, fmt.Errorf("%w after %d ticks: %d tasks live", ErrNotIdle, ticks, s.Len())
		}
		s.Tick()
		ticks++
	}
	return ticks, nil
}

// CancelAll finishes every live task with errors.ErrCanceled without
// stepping it again.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	all := append(append([]*Task(nil), s.tasks...), s.pending...)
	s.tasks = nil
	s.pending = nil
	s.mu.Unlock()

	for _, t := range all {
		s.finish(t, errors.ErrCanceled)
	}
}
