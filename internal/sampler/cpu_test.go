package sampler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCPUReader replays a fixed sequence of counter snapshots.
func scriptedCPUReader(snapshots ...CPUTimes) CPUTimesFunc {
	i := 0
	return func() (CPUTimes, error) {
		s := snapshots[i]
		if i < len(snapshots)-1 {
			i++
		}
		return s, nil
	}
}

func TestFirstSampleIsAlwaysZero(t *testing.T) {
	s := NewCPUSamplerWithReader(scriptedCPUReader(
		CPUTimes{Idle: 12345, Kernel: 99999, User: 54321},
	))

	usage, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 0.0, usage, "first sample must report 0 regardless of raw counter values")
}

func TestSampleComputesDeltaUsage(t *testing.T) {
	s := NewCPUSamplerWithReader(scriptedCPUReader(
		CPUTimes{Idle: 100, Kernel: 200, User: 100},
		CPUTimes{Idle: 150, Kernel: 300, User: 150},
	))

	_, err := s.Sample()
	require.NoError(t, err)

	usage, err := s.Sample()
	require.NoError(t, err)
	// idle delta 50, total delta (100 + 50) = 150, usage = (1 - 50/150) * 100
	assert.InDelta(t, 66.6667, usage, 0.001)
}

func TestSampleFullyIdleAndFullyBusy(t *testing.T) {
	s := NewCPUSamplerWithReader(scriptedCPUReader(
		CPUTimes{Idle: 0, Kernel: 0, User: 0},
		CPUTimes{Idle: 100, Kernel: 100, User: 0},
		CPUTimes{Idle: 100, Kernel: 200, User: 100},
	))

	_, err := s.Sample()
	require.NoError(t, err)

	usage, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 0.0, usage, "all idle time means 0% usage")

	usage, err = s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 100.0, usage, "no idle time means 100% usage")
}

func TestSampleZeroTotalDelta(t *testing.T) {
	same := CPUTimes{Idle: 500, Kernel: 900, User: 400}
	s := NewCPUSamplerWithReader(scriptedCPUReader(same, same))

	_, err := s.Sample()
	require.NoError(t, err)

	usage, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 0.0, usage, "zero total delta must not divide by zero")
}

func TestSampleCounterRegression(t *testing.T) {
	s := NewCPUSamplerWithReader(scriptedCPUReader(
		CPUTimes{Idle: 500, Kernel: 900, User: 400},
		CPUTimes{Idle: 10, Kernel: 20, User: 5},
	))

	_, err := s.Sample()
	require.NoError(t, err)

	usage, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 0.0, usage, "counters running backwards clamp to 0")
}

func TestSampleUsageStaysInRange(t *testing.T) {
	seq := []CPUTimes{
		{Idle: 0, Kernel: 0, User: 0},
		{Idle: 10, Kernel: 60, User: 30},
		{Idle: 90, Kernel: 160, User: 40},
		{Idle: 90, Kernel: 260, User: 140},
		{Idle: 500, Kernel: 600, User: 150},
	}
	s := NewCPUSamplerWithReader(scriptedCPUReader(seq...))

	for i := range seq {
		usage, err := s.Sample()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, usage, 0.0, "sample %d", i)
		assert.LessOrEqual(t, usage, 100.0, "sample %d", i)
	}
}

func TestSampleReadFailure(t *testing.T) {
	readErr := errors.New("counters unavailable")
	s := NewCPUSamplerWithReader(func() (CPUTimes, error) {
		return CPUTimes{}, readErr
	})

	_, err := s.Sample()
	assert.ErrorIs(t, err, readErr)
}

func TestSampleBaselineAdvancesEveryCall(t *testing.T) {
	s := NewCPUSamplerWithReader(scriptedCPUReader(
		CPUTimes{Idle: 0, Kernel: 0, User: 0},
		CPUTimes{Idle: 100, Kernel: 200, User: 0},
		CPUTimes{Idle: 100, Kernel: 300, User: 100},
	))

	_, err := s.Sample()
	require.NoError(t, err)

	usage, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 50.0, usage)

	// The second window must be measured against the second snapshot,
	// not the first baseline.
	usage, err = s.Sample()
	require.NoError(t, err)
	assert.Equal(t, 100.0, usage)
}
