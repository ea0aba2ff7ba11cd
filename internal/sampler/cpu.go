package sampler

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
)

// cpuTickHz converts the seconds-based counters reported by gopsutil into
// integer ticks. 100 Hz matches the USER_HZ granularity the kernel reports
// at, so the conversion round-trips exactly on Linux.
const cpuTickHz = 100

// CPUTimes is one snapshot of the cumulative system time counters, in ticks.
// The kernel bucket includes idle time, so kernel+user covers all elapsed
// time and idle/(kernel+user) is the idle fraction.
type CPUTimes struct {
	Idle   uint64
	Kernel uint64
	User   uint64
}

// CPUTimesFunc reads the current cumulative tick counters.
type CPUTimesFunc func() (CPUTimes, error)

// CPUSampler derives a usage percentage from consecutive tick-counter
// snapshots. Every call consumes and replaces the previous baseline, so
// calls must be sequential; the sampler is not safe for concurrent use.
type CPUSampler struct {
	read     CPUTimesFunc
	prev     CPUTimes
	havePrev bool
}

// NewCPUSampler returns a sampler backed by the host's aggregate CPU
// counters.
func NewCPUSampler() *CPUSampler {
	return &CPUSampler{read: readCPUTimes}
}

// NewCPUSamplerWithReader returns a sampler backed by a custom counter
// reader. Used by tests to script counter sequences.
func NewCPUSamplerWithReader(read CPUTimesFunc) *CPUSampler {
	return &CPUSampler{read: read}
}

// Sample returns the CPU usage percentage in [0,100] since the previous
// call. The very first call only records a baseline and reports 0, which
// suppresses the meaningless spike a delta against zeroed counters would
// produce.
func (s *CPUSampler) Sample() (float64, error) {
	cur, err := s.read()
	if err != nil {
		return 0, fmt.Errorf("read cpu times: %w", err)
	}

	if !s.havePrev {
		s.prev = cur
		s.havePrev = true
		return 0, nil
	}

	idleDelta := deltaCounter(cur.Idle, s.prev.Idle)
	totalDelta := deltaCounter(cur.Kernel, s.prev.Kernel) + deltaCounter(cur.User, s.prev.User)
	s.prev = cur

	if totalDelta == 0 {
		return 0, nil
	}
	return clampPercent((1 - float64(idleDelta)/float64(totalDelta)) * 100), nil
}

// deltaCounter clamps to zero when a counter runs backwards (reset or
// wraparound) instead of producing a huge unsigned difference.
func deltaCounter(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func readCPUTimes() (CPUTimes, error) {
	stats, err := cpu.Times(false)
	if err != nil {
		return CPUTimes{}, err
	}
	if len(stats) == 0 {
		return CPUTimes{}, errors.New("no aggregate cpu times reported")
	}

	ts := stats[0]
	idle := ticks(ts.Idle) + ticks(ts.Iowait)
	return CPUTimes{
		Idle: idle,
		// Fold idle into the kernel bucket so kernel+user spans all
		// elapsed time, the convention the usage formula assumes.
		Kernel: idle + ticks(ts.System) + ticks(ts.Irq) + ticks(ts.Softirq) + ticks(ts.Steal),
		User:   ticks(ts.User) + ticks(ts.Nice),
	}, nil
}

func ticks(seconds float64) uint64 {
	return uint64(seconds*cpuTickHz + 0.5)
}
