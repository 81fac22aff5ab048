package baseline

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Severity is a totally ordered suspicion level.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityElevated
	SeveritySuspicious
	SeverityVerySuspicious
)

func (s Severity) String() string {
	switch s {
	case SeverityNormal:
		return "normal"
	case SeverityElevated:
		return "elevated"
	case SeveritySuspicious:
		return "suspicious"
	case SeverityVerySuspicious:
		return "very_suspicious"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalJSON renders severities as their string names.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// GameMetrics are the observed aggregate metrics for one player's game.
// Optional fields left nil default to non-anomalous values.
type GameMetrics struct {
	EngineAgreement     *float64
	Top2EngineAgreement *float64
	AverageCPL          *float64
	TimingScore         *float64
}

// Defaults for absent metrics: agreement fractions default to zero and CPL to
// a mid-range value so a missing metric can never fire a flag.
const (
	defaultEngineAgreement = 0.0
	defaultAverageCPL      = 50.0
	defaultTimingScore     = 0.0
)

// Timing thresholds apply uniformly; timing regularity is title-independent.
const (
	timingVerySuspiciousAbove = 0.6
	timingSuspiciousAbove     = 0.4
)

// Near-certain top-2 agreement is flagged harder regardless of title.
const top2VerySuspiciousAt = 0.95

// SuspicionFlag records one anomalous metric.
type SuspicionFlag struct {
	Metric    string   `json:"metric"`
	Observed  float64  `json:"observed"`
	Threshold float64  `json:"threshold"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// ContextualAssessment is the rollup of all flags for one game.
type ContextualAssessment struct {
	Overall    Severity        `json:"overall"`
	Flags      []SuspicionFlag `json:"flags"`
	Context    string          `json:"context"`
	Thresholds TitleProfile    `json:"thresholds"`
}

// Assessor evaluates observed metrics against the threshold table. Stateless;
// safe for concurrent use.
type Assessor struct {
	table *Table
}

// NewAssessor builds an assessor over a validated table.
func NewAssessor(table *Table) *Assessor {
	return &Assessor{table: table}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Assess flags each metric strictly above (or for CPL, strictly below) its
// profile threshold. Values exactly at a threshold never flag.
func (a *Assessor) Assess(metrics GameMetrics, rawTitle, rawTimeControl string) ContextualAssessment {
	profile := a.table.Lookup(rawTitle, rawTimeControl)
	title := NormalizeTitle(rawTitle)
	tc := NormalizeTimeControl(rawTimeControl)

	engineAgreement := orDefault(metrics.EngineAgreement, defaultEngineAgreement)
	top2 := orDefault(metrics.Top2EngineAgreement, defaultEngineAgreement)
	avgCPL := orDefault(metrics.AverageCPL, defaultAverageCPL)
	timing := orDefault(metrics.TimingScore, defaultTimingScore)

	var flags []SuspicionFlag

	switch {
	case engineAgreement > profile.EngineAgreementVerySuspicious:
		flags = append(flags, SuspicionFlag{
			Metric:    "engine_agreement",
			Observed:  engineAgreement,
			Threshold: profile.EngineAgreementVerySuspicious,
			Severity:  SeverityVerySuspicious,
			Message: fmt.Sprintf("engine agreement %.2f far exceeds the %.2f expected for %s %s play",
				engineAgreement, profile.EngineAgreementVerySuspicious, title, tc),
		})
	case engineAgreement > profile.EngineAgreementSuspicious:
		flags = append(flags, SuspicionFlag{
			Metric:    "engine_agreement",
			Observed:  engineAgreement,
			Threshold: profile.EngineAgreementSuspicious,
			Severity:  SeveritySuspicious,
			Message: fmt.Sprintf("engine agreement %.2f exceeds the %.2f expected for %s %s play",
				engineAgreement, profile.EngineAgreementSuspicious, title, tc),
		})
	}

	if top2 > profile.Top2AgreementSuspicious {
		sev := SeveritySuspicious
		if top2 >= top2VerySuspiciousAt {
			sev = SeverityVerySuspicious
		}
		flags = append(flags, SuspicionFlag{
			Metric:    "top2_engine_agreement",
			Observed:  top2,
			Threshold: profile.Top2AgreementSuspicious,
			Severity:  sev,
			Message: fmt.Sprintf("top-2 engine agreement %.2f exceeds the %.2f expected for %s %s play",
				top2, profile.Top2AgreementSuspicious, title, tc),
		})
	}

	if avgCPL < profile.MinCPL {
		flags = append(flags, SuspicionFlag{
			Metric:    "average_centipawn_loss",
			Observed:  avgCPL,
			Threshold: profile.MinCPL,
			Severity:  SeveritySuspicious,
			Message: fmt.Sprintf("average centipawn loss %.1f is below the %.1f floor for %s %s play",
				avgCPL, profile.MinCPL, title, tc),
		})
	}

	switch {
	case timing > timingVerySuspiciousAbove:
		flags = append(flags, SuspicionFlag{
			Metric:    "timing_score",
			Observed:  timing,
			Threshold: timingVerySuspiciousAbove,
			Severity:  SeverityVerySuspicious,
			Message:   fmt.Sprintf("move timing regularity %.2f is far above the %.2f alarm level", timing, timingVerySuspiciousAbove),
		})
	case timing > timingSuspiciousAbove:
		flags = append(flags, SuspicionFlag{
			Metric:    "timing_score",
			Observed:  timing,
			Threshold: timingSuspiciousAbove,
			Severity:  SeveritySuspicious,
			Message:   fmt.Sprintf("move timing regularity %.2f is above the %.2f alarm level", timing, timingSuspiciousAbove),
		})
	}

	overall := rollup(flags)

	return ContextualAssessment{
		Overall:    overall,
		Flags:      flags,
		Context:    contextText(profile, title, tc, flags),
		Thresholds: profile,
	}
}

// rollup reduces flags to an overall severity: two very-suspicious flags
// dominate, one very-suspicious or two suspicious read as suspicious, and a
// single suspicious flag only elevates.
func rollup(flags []SuspicionFlag) Severity {
	var very, suspicious int
	for _, f := range flags {
		switch f.Severity {
		case SeverityVerySuspicious:
			very++
		case SeveritySuspicious:
			suspicious++
		}
	}
	switch {
	case very >= 2:
		return SeverityVerySuspicious
	case very >= 1 || suspicious >= 2:
		return SeveritySuspicious
	case suspicious >= 1:
		return SeverityElevated
	default:
		return SeverityNormal
	}
}

func contextText(p TitleProfile, title Title, tc TimeControl, flags []SuspicionFlag) string {
	anomalous := make([]string, 0, len(flags))
	for _, f := range flags {
		anomalous = append(anomalous, f.Metric)
	}
	sort.Strings(anomalous)

	base := fmt.Sprintf("expectations for %s %s: CPL %.1f-%.1f, engine agreement below %.2f, accuracy above %.2f",
		title, tc, p.MinCPL, p.MaxCPL, p.EngineAgreementSuspicious, p.MinAccuracy)
	if len(flags) == 0 {
		return base + "; no anomalous metrics"
	}
	return fmt.Sprintf("%s; %d anomalous metric(s): %v", base, len(flags), anomalous)
}
