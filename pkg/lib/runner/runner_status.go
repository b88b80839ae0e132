package runner

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
)

// Notify fires whenever a child may have changed state.
func (runner *Runner) Notify() <-chan struct{} {
	return runner.notify
}

// Collect returns every pending child status change without blocking.
// Terminated children are reaped by the call. lib.ErrNoChildren is returned
// once there is no child left to wait for.
func (runner *Runner) Collect() ([]lib.StateChange, error) {
	var changes []lib.StateChange
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WUNTRACED|unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err == unix.ECHILD {
			return changes, lib.ErrNoChildren
		}
		if err != nil {
			return changes, err
		}
		if pid <= 0 {
			return changes, nil
		}

		change, ok := toStateChange(pid, ws)
		if !ok {
			continue
		}
		if change.Terminated() {
			runner.release(pid)
		}
		runner.logger.Debug("child status changed", "pid", pid, "status", describeWaitStatus(ws))
		changes = append(changes, change)
	}
}

// release forgets a reaped process and removes its cgroup.
func (runner *Runner) release(pid int) {
	runner.mu.Lock()
	pe := runner.processes[pid]
	delete(runner.processes, pid)
	runner.mu.Unlock()

	if pe == nil {
		return
	}
	runner.logger.Debug("process released", "program", pe.program, "pid", pe.pid)
	if pe.cgrouped {
		if err := cleanupCgroup(pe.tag); err != nil {
			runner.logger.Debug("cgroup cleanup failed", "tag", pe.tag, "error", err)
		}
	}
}

func toStateChange(pid int, ws unix.WaitStatus) (lib.StateChange, bool) {
	switch {
	case ws.Stopped():
		return lib.StateChange{PID: pid, Kind: lib.ChangeStopped, Signal: ws.StopSignal()}, true
	case ws.Exited():
		return lib.StateChange{PID: pid, Kind: lib.ChangeExited, ExitCode: ws.ExitStatus()}, true
	case ws.Signaled():
		return lib.StateChange{PID: pid, Kind: lib.ChangeSignaled, Signal: ws.Signal()}, true
	default:
		return lib.StateChange{}, false
	}
}

func describeWaitStatus(ws unix.WaitStatus) string {
	switch {
	case ws.Stopped():
		return fmt.Sprintf("stopped by %v", ws.StopSignal())
	case ws.Exited():
		return fmt.Sprintf("exit status %d", ws.ExitStatus())
	case ws.Signaled():
		return fmt.Sprintf("killed by %v", ws.Signal())
	case ws.Continued():
		return "continued"
	default:
		return fmt.Sprintf("wait status %#x", uint32(ws))
	}
}
