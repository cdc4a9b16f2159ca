package scheduler

import (
	"context"
	"errors"

	"github.com/oshokin/alarm-trigger/internal/platform"
)

// TaskFunc is the body of a periodic task. It receives the tick's clock reading.
type TaskFunc func(ctx context.Context, now platform.Millis)

// task is a registered periodic task.
type task struct {
	// name identifies the task in logs.
	name string
	// period is the minimum number of milliseconds between two runs.
	period uint32
	// lastRun is the clock reading of the previous run, or of Reset.
	lastRun platform.Millis
	// run is the task body.
	run TaskFunc
}

// Scheduler runs periodic tasks cooperatively from a caller-driven loop.
// Tasks run in registration order; a task that missed several periods runs
// once and the missed periods are dropped.
// It is not safe for concurrent use; the loop goroutine owns it.
type Scheduler struct {
	tasks []*task
}

var (
	// errZeroPeriod is returned for tasks that would run on every tick.
	errZeroPeriod = errors.New("task period must be positive")
	// errNilTask is returned when a task has no body.
	errNilTask = errors.New("task body must be provided")
)

// New returns an empty scheduler.
func New() *Scheduler {
	return new(Scheduler)
}

// Register appends a task with the given period in milliseconds.
// Registration order is execution order within a tick.
func (s *Scheduler) Register(name string, periodMs uint32, run TaskFunc) error {
	if periodMs == 0 {
		return errZeroPeriod
	}

	if run == nil {
		return errNilTask
	}

	s.tasks = append(s.tasks, &task{
		name:   name,
		period: periodMs,
		run:    run,
	})

	return nil
}

// Reset marks every task as having just run at now.
func (s *Scheduler) Reset(now platform.Millis) {
	for _, t := range s.tasks {
		t.lastRun = now
	}
}

// Tick runs each task whose period has elapsed since its last run and
// returns the names of the tasks that ran.
func (s *Scheduler) Tick(ctx context.Context, now platform.Millis) []string {
	var ran []string

	for _, t := range s.tasks {
		if now.Since(t.lastRun) < t.period {
			continue
		}

		t.lastRun = now
		t.run(ctx, now)

		ran = append(ran, t.name)
	}

	return ran
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}
