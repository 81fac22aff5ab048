// Package ensemble fuses the human-likelihood, contextual-baseline, and
// telemetry signals into a tiered, explainable risk assessment. Every
// assessment is a pure, stateless computation over already-collected signals:
// identical inputs produce identical outputs.
package ensemble

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/chesswatch/chesswatch/internal/analysis"
	"github.com/chesswatch/chesswatch/internal/baseline"
	"github.com/chesswatch/chesswatch/internal/telemetry"
)

// Tier is the discrete risk bucket derived from the fused score.
type Tier string

const (
	TierNormal   Tier = "normal"
	TierElevated Tier = "elevated"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// Tier boundaries on the fused 0-100 score.
const (
	criticalAt = 85.0
	highAt     = 70.0
	elevatedAt = 40.0
)

// Additive fusion weights. These are heuristic placeholders pending empirical
// calibration, not ground truth.
var contextBonus = map[baseline.Severity]float64{
	baseline.SeverityNormal:         0,
	baseline.SeverityElevated:       10,
	baseline.SeveritySuspicious:     25,
	baseline.SeverityVerySuspicious: 45,
}

const telemetryBonusCap = 15.0

var tierActions = map[Tier][]string{
	TierNormal:   {"no action required"},
	TierElevated: {"monitor future games"},
	TierHigh:     {"queue for manual review", "compare against historical games"},
	TierCritical: {"flag for arbiter review", "request post-game interview"},
}

// Factor feature names used in explanations.
const (
	FactorHumanLikelihood = "human_likelihood"
	FactorContextual      = "contextual_anomalies"
	FactorTelemetry       = "behavioral_telemetry"
)

// RiskAssessment is the final output handed to the API and repository.
type RiskAssessment struct {
	Score              float64  `json:"score"`
	Tier               Tier     `json:"tier"`
	RecommendedActions []string `json:"recommended_actions"`
}

// FactorContribution attributes part of the fused score to one signal.
type FactorContribution struct {
	Feature           string  `json:"feature"`
	ScoreContribution float64 `json:"score_contribution"`
	RawValue          float64 `json:"raw_value"`
}

// ModelExplanation decomposes the fused score into its signal contributions,
// ordered by contribution descending. SkippedMoves surfaces malformed move
// records that were excluded from analysis.
type ModelExplanation struct {
	Probability  float64              `json:"probability"`
	Summary      string               `json:"summary"`
	TopFactors   []FactorContribution `json:"top_factors"`
	SkippedMoves int                  `json:"skipped_moves,omitempty"`
}

// Game is a preprocessed submission: normalized moves with pre-move rules
// snapshots, declared player context, aggregate metrics, and optional
// telemetry.
type Game struct {
	GameID      string
	Player      string
	Title       string
	TimeControl string
	Result      string
	Moves       []analysis.MoveInput
	Metrics     baseline.GameMetrics
	Clicks      []telemetry.ClickEvent
	Paths       []telemetry.MovementPath
}

// Engine runs the three signal models and fuses their outputs.
type Engine struct {
	model    *analysis.Model
	assessor *baseline.Assessor
	signal   telemetry.Analyzer
	logger   *zap.Logger
}

// NewEngine wires the signal models together. The telemetry analyzer is
// pluggable; pass nil for the shipped stub.
func NewEngine(model *analysis.Model, assessor *baseline.Assessor, signal telemetry.Analyzer, logger *zap.Logger) *Engine {
	if signal == nil {
		signal = telemetry.NewStubAnalyzer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{model: model, assessor: assessor, signal: signal, logger: logger}
}

// Assess scores one game. It never fails for well-formed input: malformed
// move records are skipped and counted, empty games score neutrally.
func (e *Engine) Assess(game Game) (RiskAssessment, ModelExplanation) {
	human := e.model.EvaluateGame(game.Moves)
	contextual := e.assessor.Assess(game.Metrics, game.Title, game.TimeControl)
	behavioral := e.signal.Analyze(game.Clicks, game.Paths)

	assessment, explanation := e.Fuse(human, contextual, behavioral)

	e.logger.Info("game assessed",
		zap.String("game_id", game.GameID),
		zap.String("player", game.Player),
		zap.Float64("score", assessment.Score),
		zap.String("tier", string(assessment.Tier)),
		zap.String("context_severity", contextual.Overall.String()),
		zap.Int("skipped_moves", human.SkippedMoves))

	return assessment, explanation
}

// Fuse combines the three already-computed signals. Exported separately so
// the fusion math is testable without a full game.
func (e *Engine) Fuse(human analysis.GameHumanScore, contextual baseline.ContextualAssessment, behavioral telemetry.Assessment) (RiskAssessment, ModelExplanation) {
	base := 100 * (1 - human.AvgHumanLikelihood)
	ctxBonus := contextBonus[contextual.Overall]
	telBonus := telemetryBonusCap * behavioral.SuspicionScore

	score := base + ctxBonus + telBonus
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	tier := tierFor(score)

	assessment := RiskAssessment{
		Score:              score,
		Tier:               tier,
		RecommendedActions: append([]string(nil), tierActions[tier]...),
	}

	factors := attribute(score, base, ctxBonus, telBonus, human, contextual, behavioral)

	explanation := ModelExplanation{
		Probability:  score / 100,
		Summary:      summarize(score, tier, contextual, factors),
		TopFactors:   factors,
		SkippedMoves: human.SkippedMoves,
	}

	return assessment, explanation
}

func tierFor(score float64) Tier {
	switch {
	case score >= criticalAt:
		return TierCritical
	case score >= highAt:
		return TierHigh
	case score >= elevatedAt:
		return TierElevated
	default:
		return TierNormal
	}
}

// attribute splits the clamped score proportionally across the three raw
// terms so the contributions sum exactly to the score. The last contribution
// absorbs rounding residue.
func attribute(score, base, ctxBonus, telBonus float64, human analysis.GameHumanScore, contextual baseline.ContextualAssessment, behavioral telemetry.Assessment) []FactorContribution {
	factors := []FactorContribution{
		{Feature: FactorHumanLikelihood, RawValue: human.AvgHumanLikelihood},
		{Feature: FactorContextual, RawValue: float64(contextual.Overall)},
		{Feature: FactorTelemetry, RawValue: behavioral.SuspicionScore},
	}

	total := base + ctxBonus + telBonus
	if total > 0 {
		factors[0].ScoreContribution = score * base / total
		factors[1].ScoreContribution = score * ctxBonus / total
		factors[2].ScoreContribution = score - factors[0].ScoreContribution - factors[1].ScoreContribution
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].ScoreContribution > factors[j].ScoreContribution
	})
	return factors
}

func summarize(score float64, tier Tier, contextual baseline.ContextualAssessment, factors []FactorContribution) string {
	lead := factors[0]
	return fmt.Sprintf("risk %.1f (%s); leading factor %s contributed %.1f; contextual severity %s with %d flag(s)",
		score, tier, lead.Feature, lead.ScoreContribution, contextual.Overall, len(contextual.Flags))
}
