// Package launchspec turns scheduler command lines into launch specs.
//
// A command line has the form
//
//	<quantum_ms> prog1 [args...] [: prog2 [args...] [: ...]]
//
// where ":" separates one launch spec from the next and can never be passed
// through as a literal argument.
package launchspec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
)

// Delimiter separates launch specs on the command line.
const Delimiter = ":"

// DefaultMaxArgs bounds the number of arguments (excluding the program) a
// single launch spec may carry.
const DefaultMaxArgs = 64

// ErrUsage is wrapped by every error caused by a malformed command line.
var ErrUsage = errors.New("usage error")

// Usage is the one-line synopsis printed alongside usage errors.
const Usage = "<quantum_ms> prog1 [args...] [: prog2 [args...] [: ...]]"

// ParseQuantum parses a positive number of milliseconds.
func ParseQuantum(s string) (time.Duration, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid quantum value: %s", ErrUsage, s)
	}
	if ms <= 0 {
		return 0, fmt.Errorf("%w: quantum must be positive: %s", ErrUsage, s)
	}
	if ms > int64(time.Duration(1<<63-1)/time.Millisecond) {
		return 0, fmt.Errorf("%w: quantum out of range: %s", ErrUsage, s)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// ParseSpecs splits args into launch specs. Empty segments are skipped. A
// spec carrying more than maxArgs arguments is rejected rather than truncated.
func ParseSpecs(args []string, maxArgs int) ([]lib.LaunchSpec, error) {
	if maxArgs <= 0 {
		maxArgs = DefaultMaxArgs
	}

	var specs []lib.LaunchSpec
	var current []string
	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		if len(current)-1 > maxArgs {
			return fmt.Errorf("%w: %s: too many arguments (%d, max %d)", ErrUsage, current[0], len(current)-1, maxArgs)
		}
		specs = append(specs, lib.LaunchSpec{
			Program: current[0],
			Args:    append([]string(nil), current...),
		})
		current = nil
		return nil
	}

	for _, arg := range args {
		if arg == Delimiter {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, arg)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one program is required", ErrUsage)
	}
	return specs, nil
}

// Parse parses a full command line: the quantum followed by launch specs.
func Parse(args []string, maxArgs int) (time.Duration, []lib.LaunchSpec, error) {
	if len(args) < 2 {
		return 0, nil, fmt.Errorf("%w: expected a quantum and at least one program", ErrUsage)
	}
	quantum, err := ParseQuantum(args[0])
	if err != nil {
		return 0, nil, err
	}
	specs, err := ParseSpecs(args[1:], maxArgs)
	if err != nil {
		return 0, nil, err
	}
	return quantum, specs, nil
}
