package runner

import (
	"os"
	"syscall"
)

// CgroupLimits places each managed process in its own cgroup v2 group. It
// takes effect only on Linux and only when running as root.
type CgroupLimits struct {
	Enabled bool
	// CPUWeight is written to cpu.weight (1-10000) when positive.
	CPUWeight int
	// MemoryHigh is written to memory.high, in bytes, when positive.
	MemoryHigh int64
}

// sysProcAttr bundles process attributes with the cgroup directory handle
// that must stay open until the process has started.
type sysProcAttr struct {
	File *os.File
	Raw  *syscall.SysProcAttr
}
