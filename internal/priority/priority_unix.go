//go:build !windows

// Package priority lowers the scheduling priority of the current process
// so the monitor doesn't perturb the load it is measuring.
package priority

import "golang.org/x/sys/unix"

// Lower renices the process close to the bottom of the scheduler. Best
// effort; callers treat failure as a warning.
func Lower() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, 10)
}
