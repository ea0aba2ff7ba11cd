package sampler

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerGiB = 1 << 30

// MemStatus is a point-in-time view of physical memory.
type MemStatus struct {
	TotalBytes     uint64
	AvailableBytes uint64
}

// MemStatusFunc reads the current physical memory status.
type MemStatusFunc func() (MemStatus, error)

// RAMSampler reports used physical memory. It holds no state between calls.
type RAMSampler struct {
	read MemStatusFunc
}

// NewRAMSampler returns a sampler backed by the host's memory status.
func NewRAMSampler() *RAMSampler {
	return &RAMSampler{read: readMemStatus}
}

// NewRAMSamplerWithReader returns a sampler backed by a custom status
// reader. Used by tests.
func NewRAMSamplerWithReader(read MemStatusFunc) *RAMSampler {
	return &RAMSampler{read: read}
}

// Sample returns used physical memory (total minus available) in GB.
func (s *RAMSampler) Sample() (float64, error) {
	st, err := s.read()
	if err != nil {
		return 0, fmt.Errorf("read memory status: %w", err)
	}
	if st.AvailableBytes > st.TotalBytes {
		return 0, nil
	}
	return float64(st.TotalBytes-st.AvailableBytes) / bytesPerGiB, nil
}

func readMemStatus() (MemStatus, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemStatus{}, err
	}
	return MemStatus{TotalBytes: vm.Total, AvailableBytes: vm.Available}, nil
}
