package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// execStubArg marks an invocation of our own binary as a launch stub. The
// stub stops itself and only replaces its image with the target program once
// it is continued.
const execStubArg = "__rrsched_exec__"

// HandleExecStub turns the current process into a launch stub when it was
// started as one, and never returns in that case. Programs that launch
// processes through a [Runner] must call it first thing in main (and in
// TestMain for test binaries).
func HandleExecStub() {
	if len(os.Args) < 3 || os.Args[1] != execStubArg {
		return
	}
	program := os.Args[2]
	argv := os.Args[3:]
	if len(argv) == 0 {
		argv = []string{program}
	}

	// Hold still until the scheduler grants the first turn.
	if err := unix.Kill(unix.Getpid(), unix.SIGSTOP); err != nil {
		fmt.Fprintf(os.Stderr, "rrsched: stop before exec: %v\n", err)
		os.Exit(126)
	}

	path, err := exec.LookPath(program)
	if errors.Is(err, exec.ErrDot) {
		err = nil
	}
	if err == nil {
		err = unix.Exec(path, argv, os.Environ())
	}
	fmt.Fprintf(os.Stderr, "rrsched: exec %s: %v\n", program, err)
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		os.Exit(127)
	}
	os.Exit(126)
}
