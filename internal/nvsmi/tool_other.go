//go:build !windows

package nvsmi

import "os/exec"

const toolName = "nvidia-smi"

var wellKnownPaths = []string{
	"/usr/bin/nvidia-smi",
	"/usr/local/bin/nvidia-smi",
	"/opt/nvidia/sbin/nvidia-smi",
}

// No vendor registry outside Windows; discovery falls through to the
// well-known locations.
func registryToolDir() (string, bool) {
	return "", false
}

func hideWindow(cmd *exec.Cmd) {}
