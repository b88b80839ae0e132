package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
)

// Watcher reports child status changes. Notify fires whenever a change may be
// pending; Collect returns every pending change without blocking.
type Watcher interface {
	Notify() <-chan struct{}
	Collect() ([]lib.StateChange, error)
}

// Run resumes the first process and then rotates and reaps until the process
// table is empty. A quantum tick and a child status change are never handled
// at the same time.
//
// Cancelling ctx forwards a termination request to every managed process,
// stops rotation, and kills whatever is still alive after the shutdown grace
// period. Run then returns [ErrInterrupted] once the table is empty.
func (s *Scheduler) Run(ctx context.Context, w Watcher) error {
	s.logger.Info("scheduler started", "quantum", s.quantum, "processes", s.Len())

	ticker := time.NewTicker(s.quantum)
	defer ticker.Stop()

	s.Start()
	if err := s.collect(w); err != nil {
		return err
	}

	done := ctx.Done()
	interrupted := false
	var grace *time.Timer
	var graceC <-chan time.Time
	defer func() {
		if grace != nil {
			grace.Stop()
		}
	}()

	for s.Len() > 0 {
		select {
		case <-w.Notify():
			if err := s.collect(w); err != nil {
				return err
			}
		case <-ticker.C:
			s.Preempt()
		case <-done:
			done = nil
			interrupted = true
			s.logger.Info("termination requested, forwarding to managed processes", "grace", s.grace)
			s.terminateAll()
			grace = time.NewTimer(s.grace)
			graceC = grace.C
		case <-graceC:
			graceC = nil
			s.logger.Warn("shutdown grace period expired, killing remaining processes", "remaining", s.Len())
			s.killAll()
		}
	}

	s.logger.Info("scheduler finished")
	if interrupted {
		return fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
	}
	return nil
}

func (s *Scheduler) collect(w Watcher) error {
	changes, err := w.Collect()
	for _, c := range changes {
		s.Observe(c)
	}
	if errors.Is(err, lib.ErrNoChildren) {
		s.forgetAll()
		return nil
	}
	if err != nil {
		return fmt.Errorf("collect child status: %w", err)
	}
	return nil
}

// forgetAll drops every entry once the OS reports there is nothing left to
// wait for, so the loop cannot wait forever on processes reaped elsewhere.
func (s *Scheduler) forgetAll() {
	s.withPreemptionDeferred(func() {
		if s.table.Len() == 0 {
			return
		}
		s.logger.Warn("no child processes left to wait for, dropping remaining entries", "remaining", s.table.Len())
		s.draining = true
		for s.table.Len() > 0 {
			s.reap(0, lib.StateChange{PID: s.table.At(0).PID, Kind: lib.ChangeSignaled})
		}
	})
}

func (s *Scheduler) terminateAll() {
	s.withPreemptionDeferred(func() {
		s.draining = true
		for i := 0; i < s.table.Len(); i++ {
			e := s.table.At(i)
			if err := s.ctrl.Terminate(e.PID); err != nil {
				s.logger.Debug("terminate failed", "pid", e.PID, "error", err)
			}
		}
	})
}

func (s *Scheduler) killAll() {
	s.withPreemptionDeferred(func() {
		for i := 0; i < s.table.Len(); i++ {
			e := s.table.At(i)
			if err := s.ctrl.Kill(e.PID); err != nil {
				s.logger.Debug("kill failed", "pid", e.PID, "error", err)
			}
		}
	})
}
