package runner

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// Suspend stops the process group led by pid. Stopping a stopped group is a
// no-op.
func (runner *Runner) Suspend(pid int) error {
	return signalGroup(pid, unix.SIGSTOP)
}

// Resume continues the process group led by pid. Continuing a running group
// is a no-op.
func (runner *Runner) Resume(pid int) error {
	return signalGroup(pid, unix.SIGCONT)
}

// Terminate asks the process group led by pid to exit. The group is also
// continued, otherwise a suspended process would never see the request.
func (runner *Runner) Terminate(pid int) error {
	if err := signalGroup(pid, unix.SIGTERM); err != nil {
		return err
	}
	return signalGroup(pid, unix.SIGCONT)
}

// Kill forcibly ends the process led by pid and everything it started.
func (runner *Runner) Kill(pid int) error {
	// Best-effort platform-specific kill: prefer cgroup kill on Linux, else kill process group
	if pe, err := runner.getProcess(pid); err == nil && pe.cgrouped {
		succeeded, err := killCgroup(pe.tag)
		if succeeded {
			return nil
		}
		runner.logger.Debug("cgroup kill failed, falling back to signal", "program", pe.program, "pid", pe.pid, "error", err)
	}
	return signalGroup(pid, unix.SIGKILL)
}

// signalGroup signals the process group led by pid (negative pid means
// process group), falling back to the process alone when the group is gone.
func signalGroup(pid int, sig syscall.Signal) error {
	err := unix.Kill(-pid, sig)
	if err == unix.ESRCH {
		err = unix.Kill(pid, sig)
	}
	if err != nil {
		return fmt.Errorf("signal %v to %d: %w", sig, pid, err)
	}
	return nil
}
