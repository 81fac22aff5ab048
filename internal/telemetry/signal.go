// Package telemetry derives a behavioral suspicion signal from client input
// events. No capture pipeline exists yet, so games normally arrive without
// telemetry and the signal stays neutral; the scoring math below runs only
// when a platform forwards recorded events.
package telemetry

import "math"

// NoDataFlag is the exact flag emitted when no telemetry accompanied the
// game. Downstream consumers key on it.
const NoDataFlag = "no_telemetry_data"

const (
	straightnessAlarm  = 0.95
	instantGapMillis   = 100
	instantCountCeil   = 10.0
	straightLineWeight = 0.3
	instantMoveWeight  = 0.3
	consistencyWeight  = 0.4
)

// ClickEvent is one pointer click with a millisecond timestamp.
type ClickEvent struct {
	TimestampMs int64   `json:"timestamp_ms"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Point is one sample along a pointer path.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MovementPath is one recorded pointer trajectory.
type MovementPath struct {
	Points     []Point `json:"points"`
	DurationMs int64   `json:"duration_ms"`
}

// Assessment is the behavioral signal fed into fusion. SuspicionScore is
// always in [0,1].
type Assessment struct {
	SuspicionScore float64  `json:"suspicion_score"`
	Flags          []string `json:"flags"`
}

// Analyzer produces a behavioral assessment. Implementations must be pure so
// the fusion engine stays deterministic; the concrete analyzer can be swapped
// without touching fusion.
type Analyzer interface {
	Analyze(clicks []ClickEvent, paths []MovementPath) Assessment
}

// StubAnalyzer is the shipped Analyzer. Without data it is exactly neutral.
type StubAnalyzer struct{}

// NewStubAnalyzer returns the default analyzer.
func NewStubAnalyzer() *StubAnalyzer {
	return &StubAnalyzer{}
}

// Analyze scores recorded input behavior. With no events and no paths the
// result is always {0.0, ["no_telemetry_data"]}.
func (a *StubAnalyzer) Analyze(clicks []ClickEvent, paths []MovementPath) Assessment {
	if len(clicks) == 0 && len(paths) == 0 {
		return Assessment{SuspicionScore: 0.0, Flags: []string{NoDataFlag}}
	}

	slr := straightLineRatio(paths)
	instant := instantMoveCount(clicks)
	consistency := speedConsistency(paths)

	instantTerm := float64(instant) / instantCountCeil
	if instantTerm > 1 {
		instantTerm = 1
	}

	score := straightLineWeight*slr + instantMoveWeight*instantTerm + consistencyWeight*consistency
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	var flags []string
	if slr > 0.5 {
		flags = append(flags, "straight_line_movement")
	}
	if instant > 0 {
		flags = append(flags, "instant_moves")
	}
	if consistency > 0.8 {
		flags = append(flags, "uniform_speed")
	}

	return Assessment{SuspicionScore: score, Flags: flags}
}

// straightLineRatio is the fraction of paths whose straightness (endpoint
// displacement over traveled length) exceeds the alarm level.
func straightLineRatio(paths []MovementPath) float64 {
	if len(paths) == 0 {
		return 0
	}
	straight := 0
	for _, p := range paths {
		if straightness(p) > straightnessAlarm {
			straight++
		}
	}
	return float64(straight) / float64(len(paths))
}

func straightness(p MovementPath) float64 {
	if len(p.Points) < 2 {
		return 0
	}
	var traveled float64
	for i := 1; i < len(p.Points); i++ {
		traveled += distance(p.Points[i-1], p.Points[i])
	}
	if traveled == 0 {
		return 0
	}
	return distance(p.Points[0], p.Points[len(p.Points)-1]) / traveled
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// instantMoveCount counts inter-click gaps under the instant threshold.
func instantMoveCount(clicks []ClickEvent) int {
	count := 0
	for i := 1; i < len(clicks); i++ {
		if clicks[i].TimestampMs-clicks[i-1].TimestampMs < instantGapMillis {
			count++
		}
	}
	return count
}

// speedConsistency maps the variance of per-path average speeds (points per
// second) into (0,1]; perfectly uniform speeds score 1.
func speedConsistency(paths []MovementPath) float64 {
	var speeds []float64
	for _, p := range paths {
		if p.DurationMs <= 0 || len(p.Points) == 0 {
			continue
		}
		speeds = append(speeds, float64(len(p.Points))/(float64(p.DurationMs)/1000.0))
	}
	if len(speeds) == 0 {
		return 0
	}

	var sum float64
	for _, s := range speeds {
		sum += s
	}
	mean := sum / float64(len(speeds))

	var variance float64
	for _, s := range speeds {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(speeds))

	return 1.0 / (1.0 + variance/100.0)
}
