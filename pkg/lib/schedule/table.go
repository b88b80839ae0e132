package schedule

import (
	"github.com/SanjoDeundiak/process-scheduler/pkg/lib"
)

// Entry is one managed process as recorded in the process table.
type Entry struct {
	// ID is the launch tag. It is unique per launch and is what the rotation
	// queue refers to.
	ID string
	// PID is the OS process id, set once at launch.
	PID  int
	Name string
	Spec lib.LaunchSpec

	Status lib.ProcessStatus
}

// table is the ordered sequence of live entries. Order is rotation order.
type table struct {
	entries []*Entry
}

func (t *table) Len() int {
	return len(t.entries)
}

func (t *table) At(i int) *Entry {
	return t.entries[i]
}

func (t *table) Append(e *Entry) {
	t.entries = append(t.entries, e)
}

// RemoveAt deletes the entry at i and shifts the survivors left.
func (t *table) RemoveAt(i int) *Entry {
	e := t.entries[i]
	copy(t.entries[i:], t.entries[i+1:])
	t.entries[len(t.entries)-1] = nil
	t.entries = t.entries[:len(t.entries)-1]
	return e
}

func (t *table) IndexOfPID(pid int) int {
	for i, e := range t.entries {
		if e.PID == pid {
			return i
		}
	}
	return -1
}

func (t *table) IndexOfTag(tag string) int {
	for i, e := range t.entries {
		if e.ID == tag {
			return i
		}
	}
	return -1
}

// Snapshot copies the entries so callers never alias live state.
func (t *table) Snapshot() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.copy())
	}
	return out
}

func (e *Entry) copy() Entry {
	c := *e
	c.Spec.Args = append([]string(nil), e.Spec.Args...)
	if e.Status.ExitCode != nil {
		code := *e.Status.ExitCode
		c.Status.ExitCode = &code
	}
	if e.Status.EndTime != nil {
		end := *e.Status.EndTime
		c.Status.EndTime = &end
	}
	return c
}
