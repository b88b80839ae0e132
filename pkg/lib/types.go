package lib

import (
	"errors"
	"syscall"
	"time"
)

// ErrNoChildren is returned by a status collector once the process has no
// children left to wait for.
var ErrNoChildren = errors.New("no child processes")

// ProcessState mirrors the states a managed process moves through while the
// scheduler owns it.
type ProcessState int

const (
	ProcessStateUnspecified ProcessState = iota
	ProcessStateRunning
	ProcessStateStopped
	ProcessStateExited
)

func (s ProcessState) String() string {
	switch s {
	case ProcessStateRunning:
		return "running"
	case ProcessStateStopped:
		return "stopped"
	case ProcessStateExited:
		return "exited"
	default:
		return "unspecified"
	}
}

// LaunchSpec captures a program and its argument vector. Args[0] is the
// program name as the launched process will see it.
type LaunchSpec struct {
	Program string
	Args    []string
}

// ProcessStatus captures runtime state and timestamps.
type ProcessStatus struct {
	State     ProcessState
	ExitCode  *int
	Signal    syscall.Signal
	StartTime time.Time
	EndTime   *time.Time
	// Turns counts the quanta the process has been granted.
	Turns int
}

// ChangeKind tells what happened to a child between two waits.
type ChangeKind int

const (
	ChangeStopped ChangeKind = iota + 1
	ChangeExited
	ChangeSignaled
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeStopped:
		return "stopped"
	case ChangeExited:
		return "exited"
	case ChangeSignaled:
		return "signaled"
	default:
		return "unknown"
	}
}

// StateChange is a single child status report collected by a wait.
type StateChange struct {
	PID      int
	Kind     ChangeKind
	ExitCode int
	Signal   syscall.Signal
}

// Terminated reports whether the change ends the process.
func (c StateChange) Terminated() bool {
	return c.Kind == ChangeExited || c.Kind == ChangeSignaled
}
