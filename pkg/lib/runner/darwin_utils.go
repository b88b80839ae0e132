//go:build !linux

package runner

import (
	"syscall"
)

// Without cgroups, a process group is the only grouping available.
func getSysProcAttr(tag string, limits CgroupLimits) (*sysProcAttr, error) {
	return &sysProcAttr{
		Raw: &syscall.SysProcAttr{
			Setpgid: true,
		},
	}, nil
}

func cgroupSupported() bool {
	return false
}

func killCgroup(tag string) (bool, error) {
	return false, nil
}

func cleanupCgroup(tag string) error {
	return nil
}
