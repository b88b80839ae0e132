// Package runner is the operating-system side of the scheduler: it launches
// managed processes held stopped, delivers stop/continue/terminate signals to
// their process groups, and collects their status changes.
package runner

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// Config holds [Runner] settings.
type Config struct {
	Logger *slog.Logger
	Cgroup CgroupLimits
}

// Runner manages processes started by this library.
type Runner struct {
	mu        sync.RWMutex
	processes map[int]*processEntry
	self      string
	cgroup    CgroupLimits
	logger    *slog.Logger

	sigCh  chan os.Signal
	notify chan struct{}
	stop   chan struct{}
	once   sync.Once
}

type processEntry struct {
	tag     string
	program string
	pid     int
	// cgrouped is set when the process was started inside its own cgroup.
	cgrouped bool
}

// NewRunner creates a new Runner and starts listening for child status
// changes. Call Close when done.
func NewRunner(cfg Config) (*Runner, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	runner := &Runner{
		processes: make(map[int]*processEntry),
		self:      self,
		cgroup:    cfg.Cgroup,
		logger:    logger.With("component", "runner"),
		sigCh:     make(chan os.Signal, 1),
		notify:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	if cfg.Cgroup.Enabled && !cgroupSupported() {
		runner.logger.Warn("cgroup v2 not available, managed processes get a process group only")
	}
	signal.Notify(runner.sigCh, unix.SIGCHLD)
	go runner.forwardChildSignals()

	return runner, nil
}

func (runner *Runner) forwardChildSignals() {
	for {
		select {
		case <-runner.sigCh:
			select {
			case runner.notify <- struct{}{}:
			default:
			}
		case <-runner.stop:
			return
		}
	}
}

// Close stops listening for child status changes. Managed processes are left
// alone.
func (runner *Runner) Close() error {
	runner.once.Do(func() {
		signal.Stop(runner.sigCh)
		close(runner.stop)
	})
	return nil
}

func (runner *Runner) getProcess(pid int) (*processEntry, error) {
	runner.mu.RLock()
	pe := runner.processes[pid]
	runner.mu.RUnlock()
	if pe == nil {
		return nil, os.ErrNotExist
	}
	return pe, nil
}
