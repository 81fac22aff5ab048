package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func newTestAssessor() *Assessor {
	return NewAssessor(DefaultTable())
}

func TestNoMetricsNoFlags(t *testing.T) {
	a := newTestAssessor()

	out := a.Assess(GameMetrics{}, "GM", "blitz")
	assert.Equal(t, SeverityNormal, out.Overall)
	assert.Empty(t, out.Flags)
	assert.Contains(t, out.Context, "no anomalous metrics")
}

func TestFlagsFireStrictlyAboveThreshold(t *testing.T) {
	a := newTestAssessor()
	profile := DefaultTable().Lookup("GM", "blitz")

	// Exactly at the threshold: no flag.
	out := a.Assess(GameMetrics{
		EngineAgreement:     floatPtr(profile.EngineAgreementSuspicious),
		Top2EngineAgreement: floatPtr(profile.Top2AgreementSuspicious),
	}, "GM", "blitz")
	assert.Empty(t, out.Flags)
	assert.Equal(t, SeverityNormal, out.Overall)

	// Just above: both flag.
	out = a.Assess(GameMetrics{
		EngineAgreement:     floatPtr(profile.EngineAgreementSuspicious + 0.001),
		Top2EngineAgreement: floatPtr(profile.Top2AgreementSuspicious + 0.001),
	}, "GM", "blitz")
	assert.Len(t, out.Flags, 2)
}

func TestCPLFloorFiresStrictlyBelow(t *testing.T) {
	a := newTestAssessor()
	profile := DefaultTable().Lookup("IM", "rapid")

	out := a.Assess(GameMetrics{AverageCPL: floatPtr(profile.MinCPL)}, "IM", "rapid")
	assert.Empty(t, out.Flags)

	out = a.Assess(GameMetrics{AverageCPL: floatPtr(profile.MinCPL - 0.1)}, "IM", "rapid")
	require.Len(t, out.Flags, 1)
	assert.Equal(t, "average_centipawn_loss", out.Flags[0].Metric)
	assert.Equal(t, SeveritySuspicious, out.Flags[0].Severity)
	assert.Equal(t, SeverityElevated, out.Overall)
}

func TestEngineAgreementSeverityLevels(t *testing.T) {
	a := newTestAssessor()
	profile := DefaultTable().Lookup("GM", "classical")

	out := a.Assess(GameMetrics{EngineAgreement: floatPtr(profile.EngineAgreementSuspicious + 0.01)}, "GM", "classical")
	require.Len(t, out.Flags, 1)
	assert.Equal(t, SeveritySuspicious, out.Flags[0].Severity)

	out = a.Assess(GameMetrics{EngineAgreement: floatPtr(profile.EngineAgreementVerySuspicious + 0.01)}, "GM", "classical")
	require.Len(t, out.Flags, 1)
	assert.Equal(t, SeverityVerySuspicious, out.Flags[0].Severity)
}

func TestTop2AgreementUpgrade(t *testing.T) {
	a := newTestAssessor()

	out := a.Assess(GameMetrics{Top2EngineAgreement: floatPtr(0.94)}, "WCM", "bullet")
	require.Len(t, out.Flags, 1)
	assert.Equal(t, SeveritySuspicious, out.Flags[0].Severity)

	out = a.Assess(GameMetrics{Top2EngineAgreement: floatPtr(0.97)}, "WCM", "bullet")
	require.Len(t, out.Flags, 1)
	assert.Equal(t, SeverityVerySuspicious, out.Flags[0].Severity)
}

func TestTimingThresholds(t *testing.T) {
	a := newTestAssessor()

	out := a.Assess(GameMetrics{TimingScore: floatPtr(0.4)}, "", "")
	assert.Empty(t, out.Flags)

	out = a.Assess(GameMetrics{TimingScore: floatPtr(0.5)}, "", "")
	require.Len(t, out.Flags, 1)
	assert.Equal(t, SeveritySuspicious, out.Flags[0].Severity)

	out = a.Assess(GameMetrics{TimingScore: floatPtr(0.7)}, "", "")
	require.Len(t, out.Flags, 1)
	assert.Equal(t, SeverityVerySuspicious, out.Flags[0].Severity)
}

func TestRollup(t *testing.T) {
	tests := []struct {
		name  string
		flags []SuspicionFlag
		want  Severity
	}{
		{name: "no flags", flags: nil, want: SeverityNormal},
		{
			name:  "one suspicious",
			flags: []SuspicionFlag{{Severity: SeveritySuspicious}},
			want:  SeverityElevated,
		},
		{
			name:  "two suspicious",
			flags: []SuspicionFlag{{Severity: SeveritySuspicious}, {Severity: SeveritySuspicious}},
			want:  SeveritySuspicious,
		},
		{
			name:  "one very suspicious",
			flags: []SuspicionFlag{{Severity: SeverityVerySuspicious}},
			want:  SeveritySuspicious,
		},
		{
			name: "very suspicious plus suspicious",
			flags: []SuspicionFlag{
				{Severity: SeverityVerySuspicious},
				{Severity: SeveritySuspicious},
			},
			want: SeveritySuspicious,
		},
		{
			name: "two very suspicious",
			flags: []SuspicionFlag{
				{Severity: SeverityVerySuspicious},
				{Severity: SeverityVerySuspicious},
			},
			want: SeverityVerySuspicious,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rollup(tt.flags))
		})
	}
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityNormal < SeverityElevated)
	assert.True(t, SeverityElevated < SeveritySuspicious)
	assert.True(t, SeveritySuspicious < SeverityVerySuspicious)

	assert.Equal(t, "normal", SeverityNormal.String())
	assert.Equal(t, "very_suspicious", SeverityVerySuspicious.String())
}

func TestContextReportsAnomalyCount(t *testing.T) {
	a := newTestAssessor()

	out := a.Assess(GameMetrics{
		EngineAgreement: floatPtr(0.99),
		TimingScore:     floatPtr(0.9),
		AverageCPL:      floatPtr(0.5),
	}, "untitled", "blitz")
	assert.Equal(t, SeverityVerySuspicious, out.Overall)
	assert.Contains(t, out.Context, "3 anomalous metric(s)")
}
