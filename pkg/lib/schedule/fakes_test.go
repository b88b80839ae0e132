package schedule_test

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/schedule"
)

var errLaunch = errors.New("fork failed")

// fakeOS stands in for the operating system: it launches, signals and reports
// on pretend processes.
type fakeOS struct {
	mu         sync.Mutex
	nextPID    int
	failAt     int
	launched   int
	running    map[int]bool
	alive      map[int]bool
	calls      []string
	terminated []int
	killed     []int
	dead       []int

	notify  chan struct{}
	pending []lib.StateChange
	noKids  bool
}

func newFakeOS() *fakeOS {
	return &fakeOS{
		nextPID: 100,
		failAt:  -1,
		running: make(map[int]bool),
		alive:   make(map[int]bool),
		notify:  make(chan struct{}, 1),
	}
}

func (f *fakeOS) Launch(spec lib.LaunchSpec, tag string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launched == f.failAt {
		return 0, errLaunch
	}
	f.launched++
	f.nextPID++
	f.alive[f.nextPID] = true
	return f.nextPID, nil
}

func (f *fakeOS) Suspend(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("stop %d", pid))
	f.running[pid] = false
	return nil
}

func (f *fakeOS) Resume(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("cont %d", pid))
	if !f.alive[pid] {
		f.dead = append(f.dead, pid)
		return fmt.Errorf("resume %d: no such process", pid)
	}
	f.running[pid] = true
	return nil
}

func (f *fakeOS) Terminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, pid)
	return nil
}

func (f *fakeOS) Kill(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, pid)
	return nil
}

func (f *fakeOS) Notify() <-chan struct{} {
	return f.notify
}

func (f *fakeOS) Collect() ([]lib.StateChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	if len(out) == 0 && f.noKids {
		return nil, lib.ErrNoChildren
	}
	return out, nil
}

// exit makes pid terminate and reports it to the watcher side.
func (f *fakeOS) exit(pid, code int) lib.StateChange {
	f.mu.Lock()
	f.alive[pid] = false
	f.running[pid] = false
	c := lib.StateChange{PID: pid, Kind: lib.ChangeExited, ExitCode: code}
	f.pending = append(f.pending, c)
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
	return c
}

func (f *fakeOS) runningPIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pids []int
	for pid, r := range f.running {
		if r && f.alive[pid] {
			pids = append(pids, pid)
		}
	}
	slices.Sort(pids)
	return pids
}

func (f *fakeOS) deadResumes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.dead)
}

func (f *fakeOS) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// recorder is a [schedule.Hook] that remembers what happened, in order.
type recorder struct {
	mu     sync.Mutex
	events []string
	resume []string
	exits  []string
}

func (r *recorder) OnResume(e schedule.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "resume "+e.Name)
	r.resume = append(r.resume, e.Name)
}

func (r *recorder) OnSuspend(e schedule.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "suspend "+e.Name)
}

func (r *recorder) OnExit(e schedule.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "exit "+e.Name)
	r.exits = append(r.exits, e.Name)
}

func (r *recorder) resumed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.resume)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func specs(names ...string) []lib.LaunchSpec {
	out := make([]lib.LaunchSpec, 0, len(names))
	for _, n := range names {
		out = append(out, lib.LaunchSpec{Program: n, Args: []string{n}})
	}
	return out
}
