// Package monitor sequences the CPU, RAM and GPU samplers and renders
// their combined readings into the display text.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/statpane/statpane/internal/nvsmi"
)

// maxReportLen bounds the display buffer; longer reports are truncated.
const maxReportLen = 1024

// CPUSource yields a usage percentage in [0,100].
type CPUSource interface {
	Sample() (float64, error)
}

// RAMSource yields used physical memory in GB.
type RAMSource interface {
	Sample() (float64, error)
}

// GPUSource yields one complete GPU reading or nvsmi.ErrUnavailable.
type GPUSource interface {
	Sample(ctx context.Context) (nvsmi.Metrics, error)
}

// Report is the outcome of one refresh cycle. Text is always human
// readable; failed sources are replaced by explanatory lines rather than
// omitted.
type Report struct {
	Text         string
	CPUOK        bool
	GPUAvailable bool
	GeneratedAt  time.Time
}

// Monitor owns one refresh pipeline. All sampling state lives on the
// samplers it holds, so a fresh Monitor carries no process-wide baggage
// and tests can construct them in isolation.
type Monitor struct {
	cpu        CPUSource
	ram        RAMSource
	gpu        GPUSource
	gpuTimeout time.Duration
	logger     *zap.Logger
}

// New returns a Monitor. gpuTimeout bounds the external GPU query on every
// cycle.
func New(cpu CPUSource, ram RAMSource, gpu GPUSource, gpuTimeout time.Duration, logger *zap.Logger) *Monitor {
	return &Monitor{
		cpu:        cpu,
		ram:        ram,
		gpu:        gpu,
		gpuTimeout: gpuTimeout,
		logger:     logger,
	}
}

// Refresh samples CPU, RAM and GPU in sequence and formats the report. It
// never fails; sampler errors become report text and the next cycle is the
// retry. Refresh must not be called concurrently, since the CPU sampler
// consumes its baseline on every call.
func (m *Monitor) Refresh(ctx context.Context) Report {
	cpuUsage, cpuErr := m.cpu.Sample()
	ramUsage, ramErr := m.ram.Sample()
	if cpuErr != nil {
		m.logger.Warn("cpu sample failed", zap.Error(cpuErr))
	}
	if ramErr != nil {
		m.logger.Warn("ram sample failed", zap.Error(ramErr))
	}

	gctx, cancel := context.WithTimeout(ctx, m.gpuTimeout)
	defer cancel()
	gpu, gpuErr := m.gpu.Sample(gctx)
	if gpuErr != nil {
		m.logger.Debug("gpu sample unavailable", zap.Error(gpuErr))
	}

	hostOK := cpuErr == nil && ramErr == nil

	var b strings.Builder
	if hostOK {
		fmt.Fprintf(&b, "CPU Usage: %.2f%%\n", cpuUsage)
		fmt.Fprintf(&b, "RAM Usage: %.2f GB\n", ramUsage)
	} else {
		b.WriteString("Error getting CPU/RAM usage.\n")
	}

	b.WriteString("\n--- GPU Stats ---\n")
	if gpuErr == nil {
		fmt.Fprintf(&b, "GPU: %s\n", gpu.Name)
		fmt.Fprintf(&b, "Temp: %d C\n", gpu.TemperatureCelsius)
		fmt.Fprintf(&b, "VRAM: %.2f GB / %.2f GB\n", gpu.MemoryUsedGB, gpu.MemoryTotalGB)
		fmt.Fprintf(&b, "GPU Util: %d %%", gpu.UtilizationPercent)
	} else {
		b.WriteString("GPU data not available or initializing...")
	}

	return Report{
		Text:         truncate(b.String(), maxReportLen),
		CPUOK:        hostOK,
		GPUAvailable: gpuErr == nil,
		GeneratedAt:  time.Now(),
	}
}

// truncate bounds the buffer without splitting a UTF-8 sequence.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
