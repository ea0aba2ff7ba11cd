//go:build windows

// Package priority lowers the scheduling priority of the current process
// so the monitor doesn't perturb the load it is measuring.
package priority

import "golang.org/x/sys/windows"

// Lower moves the process into the idle priority class. Best effort;
// callers treat failure as a warning.
func Lower() error {
	return windows.SetPriorityClass(windows.CurrentProcess(), windows.IDLE_PRIORITY_CLASS)
}
