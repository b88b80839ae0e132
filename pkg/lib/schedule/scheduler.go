// Package schedule implements the round-robin rotation engine: the process
// table, the one-shot rotation queue, the preemption handler and the reap loop
// that reconciles rotation with process exits.
//
// All state is owned by a single [Scheduler]. Every mutation runs inside the
// scheduler's critical section, so a preemption can never observe a table
// that is halfway through a removal and vice versa.
package schedule

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
)

// ErrInterrupted is returned by [Scheduler.Run] when the run was cancelled
// before every managed process exited on its own.
var ErrInterrupted = errors.New("scheduler interrupted")

// Controller delivers process-control requests to managed processes.
// Suspending a stopped process and resuming a running one are no-ops.
type Controller interface {
	Suspend(pid int) error
	Resume(pid int) error
	// Terminate asks the process to exit and makes sure it can act on the
	// request even while suspended.
	Terminate(pid int) error
	Kill(pid int) error
}

// Launcher creates a process for a launch spec and returns it held stopped.
type Launcher interface {
	Launch(spec lib.LaunchSpec, tag string) (int, error)
}

// Hook is notified synchronously, outside the critical section, of rotation
// events.
type Hook interface {
	OnResume(e Entry)
	OnSuspend(e Entry)
	OnExit(e Entry)
}

// Scheduler multiplexes CPU time among managed processes by strict rotation.
type Scheduler struct {
	mu sync.Mutex

	ctrl    Controller
	quantum time.Duration
	logger  *slog.Logger
	hooks   []Hook
	grace   time.Duration

	table    table
	queue    rotationQueue
	cursor   int
	running  int
	finished []*Entry
	draining bool

	// notes are hook calls queued inside the critical section.
	notes []func()
}

// New creates a [Scheduler] that grants each process quantum before
// preempting it.
func New(ctrl Controller, quantum time.Duration, opts ...Option) *Scheduler {
	o := &Options{ShutdownGrace: DefaultShutdownGrace}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Scheduler{
		ctrl:    ctrl,
		quantum: quantum,
		logger:  logger.With("component", "scheduler"),
		hooks:   o.Hooks,
		grace:   o.ShutdownGrace,
	}
}

// withPreemptionDeferred runs fn as the scheduler's critical section. Queued
// hook notifications are delivered after the section ends.
func (s *Scheduler) withPreemptionDeferred(fn func()) {
	s.mu.Lock()
	fn()
	notes := s.notes
	s.notes = nil
	s.mu.Unlock()

	for _, note := range notes {
		note()
	}
}

func (s *Scheduler) note(call func(h Hook, e Entry), e *Entry) {
	if len(s.hooks) == 0 {
		return
	}
	snapshot := e.copy()
	s.notes = append(s.notes, func() {
		for _, h := range s.hooks {
			call(h, snapshot)
		}
	})
}

// Launch starts every spec in order, recording each in the process table and
// the rotation queue. A launch failure kills the processes already started
// and is returned.
func (s *Scheduler) Launch(l Launcher, specs []lib.LaunchSpec) error {
	for _, spec := range specs {
		tag := lib.NewID()
		pid, err := l.Launch(spec, tag)
		if err != nil {
			s.abort()
			return fmt.Errorf("launch %s: %w", spec.Program, err)
		}

		s.withPreemptionDeferred(func() {
			s.table.Append(&Entry{
				ID:   tag,
				PID:  pid,
				Name: spec.Program,
				Spec: spec,
				Status: lib.ProcessStatus{
					State:     lib.ProcessStateStopped,
					StartTime: time.Now(),
				},
			})
			s.queue.Enqueue(tag)
		})
		s.logger.Info("process launched", "program", spec.Program, "pid", pid, "tag", tag)
	}
	return nil
}

func (s *Scheduler) abort() {
	s.withPreemptionDeferred(func() {
		for i := 0; i < s.table.Len(); i++ {
			e := s.table.At(i)
			if err := s.ctrl.Kill(e.PID); err != nil {
				s.logger.Debug("kill after failed launch", "pid", e.PID, "error", err)
			}
		}
	})
}

// Start resumes the first process. The initial turn is the first entry's
// first-pass turn, so it consumes that entry's rotation tag.
func (s *Scheduler) Start() {
	s.withPreemptionDeferred(func() {
		if s.table.Len() == 0 {
			return
		}
		s.cursor = 0
		if tag, ok := s.queue.Dequeue(); ok {
			if i := s.table.IndexOfTag(tag); i >= 0 {
				s.cursor = i
			}
		}
		s.resume(s.cursor, true)
	})
}

// Preempt is the handler run on every quantum expiry: suspend the current
// process, pick the next one, resume it. The three steps happen in that order.
func (s *Scheduler) Preempt() {
	s.withPreemptionDeferred(func() {
		if s.draining || s.table.Len() == 0 {
			return
		}
		s.suspend(s.cursor)
		s.cursor = s.next()
		s.resume(s.cursor, true)
	})
}

// next returns the position of the process to run after the current one.
// While the rotation queue still holds tags, the first live tag decides. Tags
// of processes that were already reaped are dropped; once the queue is empty
// rotation is modular advancement over the table.
func (s *Scheduler) next() int {
	for {
		tag, ok := s.queue.Dequeue()
		if !ok {
			break
		}
		if i := s.table.IndexOfTag(tag); i >= 0 {
			return i
		}
		s.logger.Debug("rotation tag no longer live, skipping", "tag", tag)
	}
	return (s.cursor + 1) % s.table.Len()
}

func (s *Scheduler) suspend(i int) {
	e := s.table.At(i)
	if err := s.ctrl.Suspend(e.PID); err != nil {
		s.logger.Debug("suspend failed", "pid", e.PID, "error", err)
	}
	e.Status.State = lib.ProcessStateStopped
	if s.running == e.PID {
		s.running = 0
	}
	s.note(Hook.OnSuspend, e)
}

// resume continues the process at i. grant tells whether this starts a new
// quantum for it rather than confirming one it already holds.
func (s *Scheduler) resume(i int, grant bool) {
	e := s.table.At(i)
	if err := s.ctrl.Resume(e.PID); err != nil {
		s.logger.Debug("resume failed", "pid", e.PID, "error", err)
	}
	e.Status.State = lib.ProcessStateRunning
	s.running = e.PID
	if grant {
		e.Status.Turns++
		s.note(Hook.OnResume, e)
	}
}

// Observe applies a child status change. Stops leave the table untouched;
// terminations remove the entry and hand the CPU to the process at the
// cursor.
func (s *Scheduler) Observe(c lib.StateChange) {
	s.withPreemptionDeferred(func() {
		i := s.table.IndexOfPID(c.PID)
		if i < 0 {
			s.logger.Debug("status change for unmanaged process", "pid", c.PID, "kind", c.Kind)
			return
		}
		if !c.Terminated() {
			s.logger.Debug("process stopped", "pid", c.PID)
			return
		}
		s.reap(i, c)
	})
}

func (s *Scheduler) reap(i int, c lib.StateChange) {
	e := s.table.RemoveAt(i)
	now := time.Now()
	e.Status.State = lib.ProcessStateExited
	e.Status.EndTime = &now
	switch c.Kind {
	case lib.ChangeExited:
		code := c.ExitCode
		e.Status.ExitCode = &code
	case lib.ChangeSignaled:
		e.Status.Signal = c.Signal
	}
	s.finished = append(s.finished, e)
	s.note(Hook.OnExit, e)

	wasRunning := s.running == e.PID
	if wasRunning {
		s.running = 0
	}
	s.logger.Info("process exited",
		"program", e.Name,
		"pid", e.PID,
		"kind", c.Kind,
		"exit_code", c.ExitCode,
		"turns", e.Status.Turns,
		"remaining", s.table.Len(),
	)

	n := s.table.Len()
	if n == 0 {
		s.cursor = 0
		return
	}
	if i < s.cursor {
		// Keep pointing at the same process after the shift.
		s.cursor--
	}
	s.cursor %= n
	if s.draining {
		return
	}
	s.resume(s.cursor, s.running != s.table.At(s.cursor).PID)
}

// Len returns the number of live managed processes.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Len()
}

// Current returns the entry currently permitted to run.
func (s *Scheduler) Current() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table.Len() == 0 {
		return Entry{}, false
	}
	return s.table.At(s.cursor).copy(), true
}

// Entries returns a snapshot of the live process table in rotation order.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Snapshot()
}

// Summary returns every process seen by the scheduler: exited ones in exit
// order followed by the live ones in rotation order.
func (s *Scheduler) Summary() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.finished)+s.table.Len())
	for _, e := range s.finished {
		out = append(out, e.copy())
	}
	return append(out, s.table.Snapshot()...)
}
