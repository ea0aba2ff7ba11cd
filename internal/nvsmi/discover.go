package nvsmi

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Discovery resolves the path of the SMI executable. Steps run in trust
// order: the vendor-configured install directory is checked first because
// it is the most authoritative, and a PATH search comes last because it is
// the least deterministic.
type Discovery struct {
	fileExists  func(string) bool
	registryDir func() (string, bool)
	executable  func() (string, error)
	lookPath    func(string) (string, error)
}

// NewDiscovery returns a Discovery backed by the real filesystem and
// process environment.
func NewDiscovery() *Discovery {
	return &Discovery{
		fileExists:  fileExists,
		registryDir: registryToolDir,
		executable:  os.Executable,
		lookPath:    exec.LookPath,
	}
}

// LookupTool returns the path the SMI tool should be launched with, trying
// in order: the vendor registry entry, the well-known install locations,
// the directory of the running executable, and a PATH search. It always
// returns something; the bare tool name is the last resort and lets the
// process launch do its own resolution.
func (d *Discovery) LookupTool() string {
	if dir, ok := d.registryDir(); ok {
		p := filepath.Join(dir, toolName)
		if d.fileExists(p) {
			return p
		}
	}

	for _, p := range wellKnownPaths {
		if d.fileExists(p) {
			return p
		}
	}

	if exe, err := d.executable(); err == nil {
		p := filepath.Join(filepath.Dir(exe), toolName)
		if d.fileExists(p) {
			return p
		}
	}

	if p, err := d.lookPath(toolName); err == nil && p != "" {
		return p
	}

	return toolName
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
