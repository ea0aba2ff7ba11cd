//go:build windows

package nvsmi

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

const toolName = "nvidia-smi.exe"

var wellKnownPaths = []string{
	`C:\Program Files\NVIDIA Corporation\NVSMI\nvidia-smi.exe`,
	`C:\Windows\System32\nvidia-smi.exe`,
	`C:\Windows\Sysnative\nvidia-smi.exe`,
}

// registryToolDir reads the SMI install directory the NVIDIA driver
// records under HKLM. The key is optional; most recent drivers install
// into System32 instead.
func registryToolDir() (string, bool) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\NVIDIA Corporation\Global\NVSMI`, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer key.Close()

	dir, _, err := key.GetStringValue("Path")
	if err != nil || dir == "" {
		return "", false
	}
	return dir, true
}

// hideWindow keeps the child console from flashing over the display.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
