package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoDataIsExactlyNeutral(t *testing.T) {
	a := NewStubAnalyzer()

	out := a.Analyze(nil, nil)
	assert.Equal(t, 0.0, out.SuspicionScore)
	assert.Equal(t, []string{NoDataFlag}, out.Flags)

	out = a.Analyze([]ClickEvent{}, []MovementPath{})
	assert.Equal(t, 0.0, out.SuspicionScore)
	assert.Equal(t, []string{NoDataFlag}, out.Flags)
}

func TestStraightness(t *testing.T) {
	straight := MovementPath{Points: []Point{{0, 0}, {5, 0}, {10, 0}}, DurationMs: 100}
	assert.InDelta(t, 1.0, straightness(straight), 1e-9)

	// Out and back: displacement zero, traveled positive.
	detour := MovementPath{Points: []Point{{0, 0}, {10, 0}, {0, 0}}, DurationMs: 100}
	assert.InDelta(t, 0.0, straightness(detour), 1e-9)

	single := MovementPath{Points: []Point{{0, 0}}}
	assert.Equal(t, 0.0, straightness(single))
}

func TestInstantMoveCount(t *testing.T) {
	clicks := []ClickEvent{
		{TimestampMs: 0},
		{TimestampMs: 50},   // instant
		{TimestampMs: 500},  // not
		{TimestampMs: 590},  // instant
		{TimestampMs: 2000}, // not
	}
	assert.Equal(t, 2, instantMoveCount(clicks))
	assert.Equal(t, 0, instantMoveCount(nil))
}

func TestSpeedConsistency(t *testing.T) {
	// Identical speeds: zero variance, consistency 1.
	uniform := []MovementPath{
		{Points: make([]Point, 10), DurationMs: 1000},
		{Points: make([]Point, 20), DurationMs: 2000},
	}
	assert.InDelta(t, 1.0, speedConsistency(uniform), 1e-9)

	// Wildly different speeds: consistency decays toward zero.
	varied := []MovementPath{
		{Points: make([]Point, 10), DurationMs: 1000},
		{Points: make([]Point, 100), DurationMs: 1000},
	}
	assert.Less(t, speedConsistency(varied), 0.1)

	assert.Equal(t, 0.0, speedConsistency(nil))
}

func TestSuspicionScoreBounds(t *testing.T) {
	a := NewStubAnalyzer()

	// Worst case: all paths straight, many instant clicks, uniform speed.
	var clicks []ClickEvent
	for i := 0; i < 20; i++ {
		clicks = append(clicks, ClickEvent{TimestampMs: int64(i * 10)})
	}
	paths := []MovementPath{
		{Points: []Point{{0, 0}, {10, 0}}, DurationMs: 1000},
		{Points: []Point{{0, 0}, {0, 10}}, DurationMs: 1000},
	}

	out := a.Analyze(clicks, paths)
	require.GreaterOrEqual(t, out.SuspicionScore, 0.0)
	require.LessOrEqual(t, out.SuspicionScore, 1.0)
	assert.InDelta(t, 1.0, out.SuspicionScore, 1e-9)
	assert.NotContains(t, out.Flags, NoDataFlag)
}

func TestPartialDataStillScores(t *testing.T) {
	a := NewStubAnalyzer()

	// Clicks without paths is data, not the neutral case.
	out := a.Analyze([]ClickEvent{{TimestampMs: 0}, {TimestampMs: 5000}}, nil)
	assert.NotEqual(t, []string{NoDataFlag}, out.Flags)
	assert.GreaterOrEqual(t, out.SuspicionScore, 0.0)
	assert.LessOrEqual(t, out.SuspicionScore, 1.0)
}
