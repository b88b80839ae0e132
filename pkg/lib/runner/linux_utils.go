//go:build linux

package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	cgroupMount = "/sys/fs/cgroup"
	cgroupRoot  = cgroupMount + "/rrsched"
)

var (
	cgroupInitOnce sync.Once
	cgroupInitErr  error

	cgroup2Once sync.Once
	cgroup2     bool
)

var errNoCgroup2 = errors.New("cgroup v2 unavailable: " + cgroupMount + " is not a cgroup2 mount")

// cgroupSupported reports whether the unified cgroup v2 hierarchy is mounted
// at /sys/fs/cgroup. Hybrid and v1-only hosts report false.
func cgroupSupported() bool {
	cgroup2Once.Do(func() {
		var st unix.Statfs_t
		if err := unix.Statfs(cgroupMount, &st); err != nil {
			return
		}
		cgroup2 = st.Type == unix.CGROUP2_SUPER_MAGIC
	})
	return cgroup2
}

// initCgroups enables the controllers rrsched needs under its cgroup root.
// Real work happens only once.
func initCgroups() error {
	cgroupInitOnce.Do(func() {
		cgroupInitErr = initCgroupsImpl()
	})
	return cgroupInitErr
}

func initCgroupsImpl() error {
	// Never create directories on a tmpfs that merely hosts v1 controllers.
	if !cgroupSupported() {
		return errNoCgroup2
	}
	if err := os.MkdirAll(cgroupRoot, 0755); err != nil {
		return err
	}

	available, err := readControllerSet(filepath.Join(cgroupRoot, "cgroup.controllers"))
	if err != nil {
		return err
	}
	enabled, err := readControllerSet(filepath.Join(cgroupRoot, "cgroup.subtree_control"))
	if err != nil {
		return err
	}

	var toAdd []string
	for _, ctrl := range []string{"cpu", "memory"} {
		if available[ctrl] && !enabled[ctrl] {
			toAdd = append(toAdd, "+"+ctrl)
		}
	}
	if len(toAdd) > 0 {
		return writeString(filepath.Join(cgroupRoot, "cgroup.subtree_control"), strings.Join(toAdd, " "))
	}
	return nil
}

func readControllerSet(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, f := range strings.Fields(string(data)) {
		set[strings.TrimPrefix(f, "+")] = true
	}
	return set, nil
}

// getSysProcAttr puts every managed process in its own process group. When
// cgroups are enabled and we run as root, the process is also started
// directly inside a cgroup named after its launch tag. Without cgroup v2 the
// process group is all there is.
func getSysProcAttr(tag string, limits CgroupLimits) (*sysProcAttr, error) {
	if !limits.Enabled || os.Geteuid() != 0 || !cgroupSupported() {
		return &sysProcAttr{
			Raw: &syscall.SysProcAttr{
				Setpgid: true,
			},
		}, nil
	}

	if err := initCgroups(); err != nil {
		return nil, fmt.Errorf("init cgroups: %w", err)
	}

	cgPath, err := setupCgroupFor(tag, limits)
	if err != nil {
		return nil, fmt.Errorf("cgroup for %s: %w", tag, err)
	}

	cgroupFile, err := os.Open(cgPath)
	if err != nil {
		_ = os.Remove(cgPath)
		return nil, err
	}

	return &sysProcAttr{
		File: cgroupFile,
		Raw: &syscall.SysProcAttr{
			Setpgid:     true,
			UseCgroupFD: true,
			CgroupFD:    int(cgroupFile.Fd()),
		},
	}, nil
}

func killCgroup(tag string) (bool, error) {
	err := writeString(filepath.Join(cgroupRoot, tag, "cgroup.kill"), "1")
	return err == nil, err
}

func cleanupCgroup(tag string) error {
	return os.Remove(filepath.Join(cgroupRoot, tag))
}

func setupCgroupFor(tag string, limits CgroupLimits) (string, error) {
	path := filepath.Join(cgroupRoot, tag)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}

	if limits.CPUWeight > 0 && controllerEnabled(cgroupRoot, "cpu") {
		if err := writeString(filepath.Join(path, "cpu.weight"), fmt.Sprint(limits.CPUWeight)); err != nil {
			return "", err
		}
	}
	if limits.MemoryHigh > 0 && controllerEnabled(cgroupRoot, "memory") {
		if err := writeString(filepath.Join(path, "memory.high"), fmt.Sprint(limits.MemoryHigh)); err != nil {
			return "", err
		}
	}
	return path, nil
}

func controllerEnabled(cgPath, controller string) bool {
	enabled, err := readControllerSet(filepath.Join(cgPath, "cgroup.subtree_control"))
	if err != nil {
		return false
	}
	return enabled[controller]
}

func writeString(path, val string) error {
	return os.WriteFile(path, []byte(val), 0644)
}
