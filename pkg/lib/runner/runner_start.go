package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
)

// Launch starts spec as a new process in its own process group and returns
// its pid once the process is known to be stopped, before it has executed
// any of the target program. tag names the launch and, when cgroups are in
// use, the process's cgroup.
func (runner *Runner) Launch(spec lib.LaunchSpec, tag string) (int, error) {
	if spec.Program == "" {
		return 0, errors.New("program is required")
	}

	args := append([]string{execStubArg, spec.Program}, spec.Args...)
	cmd := exec.Command(runner.self, args...)
	// cmd.Stdin is left nil, so it will use /dev/null
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	sysProcAttr, err := getSysProcAttr(tag, runner.cgroup)
	if err != nil {
		return 0, err
	}
	cmd.SysProcAttr = sysProcAttr.Raw

	runner.logger.Debug("starting process", "program", spec.Program, "tag", tag)
	if err := cmd.Start(); err != nil {
		runner.logger.Error("failed to start process", "program", spec.Program, "error", err)
		if sysProcAttr.File != nil {
			_ = sysProcAttr.File.Close()
			_ = cleanupCgroup(tag)
		}
		return 0, err
	}
	if sysProcAttr.File != nil {
		_ = sysProcAttr.File.Close()
	}

	pid := cmd.Process.Pid
	// Reaping goes through wait4 below and in Collect, never through cmd.Wait.
	_ = cmd.Process.Release()

	if err := waitStopped(pid); err != nil {
		_ = unix.Kill(-pid, unix.SIGKILL)
		if sysProcAttr.File != nil {
			_ = cleanupCgroup(tag)
		}
		return 0, fmt.Errorf("hold %s stopped: %w", spec.Program, err)
	}

	runner.mu.Lock()
	runner.processes[pid] = &processEntry{
		tag:      tag,
		program:  spec.Program,
		pid:      pid,
		cgrouped: sysProcAttr.File != nil,
	}
	runner.mu.Unlock()

	runner.logger.Debug("process held stopped", "program", spec.Program, "pid", pid)
	return pid, nil
}

// waitStopped blocks until pid reports a stop. A process that terminates
// instead is reaped and reported as an error.
func waitStopped(pid int) error {
	for {
		var ws unix.WaitStatus
		_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if ws.Stopped() {
			return nil
		}
		if ws.Exited() || ws.Signaled() {
			return fmt.Errorf("process %d terminated before it stopped (%s)", pid, describeWaitStatus(ws))
		}
	}
}
