package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/launchspec"
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib/runner"
)

func main() {
	// Launched children re-enter here before anything else runs.
	runner.HandleExecStub()

	root := NewRootCmd()

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, launchspec.ErrUsage) {
			fmt.Fprintf(os.Stderr, "usage: %s\n", root.UseLine())
		}
		os.Exit(1)
	}
}
