// Package sched runs a fixed set of periodic tasks off a single base tick.
// Tasks are cooperative: each step runs to completion on the caller's
// goroutine and the only suspension point is the wait for the next tick.
package sched

import (
	"errors"
	"fmt"
	"time"
)

// State is the opaque state value a task carries between invocations.
type State int

// StepFunc advances a task by one invocation and returns its next state.
type StepFunc func(State) State

// Task is one periodic entry in the schedule.
type Task struct {
	Name    string
	State   State
	Period  time.Duration
	Elapsed time.Duration
	Step    StepFunc

	fired uint64
}

// Fired returns how many times the task's step has run.
func (t *Task) Fired() uint64 {
	return t.fired
}

// Scheduler holds the ordered task list. It is not safe for concurrent use;
// only the goroutine running Cycle/Run may touch it.
type Scheduler struct {
	base   time.Duration
	tasks  []*Task
	cycles uint64

	// OnCycle, if set, runs after every cycle with the cycle count so far.
	OnCycle func(cycles uint64)
}

// New builds a scheduler. Tasks run in the given order within a cycle.
// Each task starts with Elapsed equal to its Period so it fires on the
// first cycle.
func New(base time.Duration, tasks ...Task) (*Scheduler, error) {
	if base <= 0 {
		return nil, fmt.Errorf("base tick must be positive, got %v", base)
	}
	if len(tasks) == 0 {
		return nil, errors.New("no tasks")
	}

	s := &Scheduler{base: base}
	for i := range tasks {
		t := tasks[i]
		if t.Step == nil {
			return nil, fmt.Errorf("task %q: nil step", t.Name)
		}
		if t.Period <= 0 || t.Period%base != 0 {
			return nil, fmt.Errorf("task %q: period %v is not a positive multiple of %v", t.Name, t.Period, base)
		}
		t.Elapsed = t.Period
		s.tasks = append(s.tasks, &t)
	}
	return s, nil
}

// Base returns the base tick.
func (s *Scheduler) Base() time.Duration {
	return s.base
}

// Tasks returns the task list in priority order.
func (s *Scheduler) Tasks() []*Task {
	return s.tasks
}

// Task returns the task with the given name, or nil.
func (s *Scheduler) Task(name string) *Task {
	for _, t := range s.tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Cycles returns the number of completed cycles.
func (s *Scheduler) Cycles() uint64 {
	return s.cycles
}

// Cycle processes one base tick: every due task steps, then every task's
// elapsed time advances by one base tick.
func (s *Scheduler) Cycle() {
	for _, t := range s.tasks {
		if t.Elapsed >= t.Period {
			t.State = t.Step(t.State)
			t.Elapsed = 0
			t.fired++
		}
		t.Elapsed += s.base
	}
	s.cycles++
	if s.OnCycle != nil {
		s.OnCycle(s.cycles)
	}
}

// Run performs a cycle, then waits for the next tick, forever. It returns
// only when stop is closed or receives. A tick source that never fires
// blocks Run indefinitely.
func (s *Scheduler) Run(tick <-chan time.Time, stop <-chan struct{}) {
	for {
		s.Cycle()
		select {
		case <-stop:
			return
		case <-tick:
		}
	}
}
