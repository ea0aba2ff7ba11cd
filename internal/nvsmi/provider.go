package nvsmi

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Provider locates the SMI tool, runs it and turns its XML dump into a
// Metrics value. An explicit tool path from configuration skips discovery.
type Provider struct {
	discovery *Discovery
	logger    *zap.Logger
	override  string
	runTool   func(ctx context.Context, path string) ([]byte, error)
}

// NewProvider returns a Provider. overridePath may be empty, in which case
// the tool is discovered on every sample, matching how transient installs
// and PATH changes are picked up without a restart.
func NewProvider(logger *zap.Logger, overridePath string) *Provider {
	return &Provider{
		discovery: NewDiscovery(),
		logger:    logger,
		override:  overridePath,
		runTool:   runTool,
	}
}

// Sample runs the query tool and parses its structured dump. The context
// bounds the whole invocation; a hung tool costs one refresh cycle, not
// the process. Every failure mode reports ErrUnavailable.
func (p *Provider) Sample(ctx context.Context) (Metrics, error) {
	path := p.override
	if path == "" {
		path = p.discovery.LookupTool()
	}

	out, err := p.runTool(ctx, path)
	if err != nil {
		return Metrics{}, fmt.Errorf("%w: run %s: %v", ErrUnavailable, path, err)
	}

	m, err := Parse(out)
	if err != nil {
		return Metrics{}, err
	}

	p.logger.Debug("gpu sample",
		zap.String("tool", path),
		zap.String("gpu", m.Name),
		zap.Uint("utilization", m.UtilizationPercent),
	)
	return m, nil
}

// runTool launches the tool requesting a full XML dump and captures its
// combined stdout and stderr, the way the tool's own error text shows up
// in diagnostics rather than on the terminal.
func runTool(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, "-q", "-x")
	hideWindow(cmd)
	return cmd.CombinedOutput()
}
