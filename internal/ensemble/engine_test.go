package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesswatch/chesswatch/internal/analysis"
	"github.com/chesswatch/chesswatch/internal/baseline"
	"github.com/chesswatch/chesswatch/internal/chess"
	"github.com/chesswatch/chesswatch/internal/telemetry"
)

func newTestEngine() *Engine {
	model := analysis.NewModel(analysis.DefaultWeights(), chess.DefaultPieceValues(), nil)
	assessor := baseline.NewAssessor(baseline.DefaultTable())
	return NewEngine(model, assessor, nil, nil)
}

func floatPtr(v float64) *float64 { return &v }

// forcedMoveGame is two forced (obvious) moves with zero loss, no contextual
// anomalies, no telemetry.
func forcedMoveGame() Game {
	mv := chess.Move{From: "h1", To: "g1"}
	pos := chess.NewPosition(chess.White,
		map[chess.Square]chess.Piece{"h1": {Type: chess.King, Color: chess.White}},
		[]chess.LegalMove{{Move: mv}}, nil)

	return Game{
		GameID:      "game-1",
		Player:      "test-player",
		Title:       "GM",
		TimeControl: "blitz",
		Moves: []analysis.MoveInput{
			{Ply: 1, Mover: chess.White, Position: pos, Played: mv, CPLoss: floatPtr(0)},
			{Ply: 3, Mover: chess.White, Position: pos, Played: mv, CPLoss: floatPtr(0)},
		},
	}
}

func TestCleanGameScoresNormal(t *testing.T) {
	e := newTestEngine()

	assessment, explanation := e.Assess(forcedMoveGame())

	// human_score 95 -> base 5; no context bonus, no telemetry bonus.
	assert.InDelta(t, 5, assessment.Score, 1e-9)
	assert.Equal(t, TierNormal, assessment.Tier)
	assert.Equal(t, []string{"no action required"}, assessment.RecommendedActions)
	assert.InDelta(t, 0.05, explanation.Probability, 1e-9)
	assert.Zero(t, explanation.SkippedMoves)
}

func TestAnomalousGameScoresCritical(t *testing.T) {
	e := newTestEngine()

	// Strong contextual anomalies on top of a low human score.
	human := analysis.GameHumanScore{
		TotalMoves:                10,
		AvgHumanLikelihood:        0.3,
		NonObviousEngineMoveCount: 10,
		HumanScore:                10,
	}
	contextual := baseline.ContextualAssessment{Overall: baseline.SeveritySuspicious}
	behavioral := telemetry.Assessment{SuspicionScore: 0, Flags: []string{telemetry.NoDataFlag}}

	assessment, explanation := e.Fuse(human, contextual, behavioral)

	// base 70 + context 25 = 95.
	assert.InDelta(t, 95, assessment.Score, 1e-9)
	assert.Equal(t, TierCritical, assessment.Tier)
	assert.Equal(t, []string{"flag for arbiter review", "request post-game interview"}, assessment.RecommendedActions)
	assert.Equal(t, FactorHumanLikelihood, explanation.TopFactors[0].Feature)
}

func TestFusionIsDeterministic(t *testing.T) {
	e := newTestEngine()
	game := forcedMoveGame()

	a1, x1 := e.Assess(game)
	a2, x2 := e.Assess(game)
	assert.Equal(t, a1, a2)
	assert.Equal(t, x1, x2)

	human := analysis.GameHumanScore{AvgHumanLikelihood: 0.41, HumanScore: 41}
	contextual := baseline.ContextualAssessment{Overall: baseline.SeverityElevated}
	behavioral := telemetry.Assessment{SuspicionScore: 0.37}

	b1, y1 := e.Fuse(human, contextual, behavioral)
	b2, y2 := e.Fuse(human, contextual, behavioral)
	assert.Equal(t, b1, b2)
	assert.Equal(t, y1, y2)
}

func TestScoreClamping(t *testing.T) {
	e := newTestEngine()

	// Everything maxed far exceeds 100 before clamping.
	human := analysis.GameHumanScore{AvgHumanLikelihood: 0, HumanScore: 0}
	contextual := baseline.ContextualAssessment{Overall: baseline.SeverityVerySuspicious}
	behavioral := telemetry.Assessment{SuspicionScore: 1}

	assessment, explanation := e.Fuse(human, contextual, behavioral)
	assert.Equal(t, 100.0, assessment.Score)
	assert.Equal(t, TierCritical, assessment.Tier)

	var sum float64
	for _, f := range explanation.TopFactors {
		sum += f.ScoreContribution
	}
	assert.InDelta(t, assessment.Score, sum, 1e-9)
}

func TestExplanationContributionsSumToScore(t *testing.T) {
	e := newTestEngine()

	cases := []struct {
		avg       float64
		severity  baseline.Severity
		telemetry float64
	}{
		{avg: 1.0, severity: baseline.SeverityNormal, telemetry: 0},
		{avg: 0.8, severity: baseline.SeverityElevated, telemetry: 0.2},
		{avg: 0.5, severity: baseline.SeveritySuspicious, telemetry: 0.9},
		{avg: 0.1, severity: baseline.SeverityVerySuspicious, telemetry: 1},
	}

	for _, tc := range cases {
		assessment, explanation := e.Fuse(
			analysis.GameHumanScore{AvgHumanLikelihood: tc.avg},
			baseline.ContextualAssessment{Overall: tc.severity},
			telemetry.Assessment{SuspicionScore: tc.telemetry},
		)

		require.Len(t, explanation.TopFactors, 3)

		var sum float64
		for _, f := range explanation.TopFactors {
			sum += f.ScoreContribution
		}
		assert.InDelta(t, assessment.Score, sum, 1e-9)

		// Ordered by contribution descending.
		for i := 1; i < len(explanation.TopFactors); i++ {
			assert.GreaterOrEqual(t,
				explanation.TopFactors[i-1].ScoreContribution,
				explanation.TopFactors[i].ScoreContribution)
		}
	}
}

func TestZeroScoreHasZeroContributions(t *testing.T) {
	e := newTestEngine()

	assessment, explanation := e.Fuse(
		analysis.GameHumanScore{AvgHumanLikelihood: 1.0, HumanScore: 100},
		baseline.ContextualAssessment{Overall: baseline.SeverityNormal},
		telemetry.Assessment{SuspicionScore: 0},
	)
	assert.Equal(t, 0.0, assessment.Score)
	for _, f := range explanation.TopFactors {
		assert.Equal(t, 0.0, f.ScoreContribution)
	}
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{0, TierNormal},
		{39.99, TierNormal},
		{40, TierElevated},
		{69.99, TierElevated},
		{70, TierHigh},
		{84.99, TierHigh},
		{85, TierCritical},
		{100, TierCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tierFor(tt.score), "score %.2f", tt.score)
	}
}

func TestEmptyGameIsNeutral(t *testing.T) {
	e := newTestEngine()

	assessment, explanation := e.Assess(Game{GameID: "empty"})
	assert.Equal(t, 0.0, assessment.Score)
	assert.Equal(t, TierNormal, assessment.Tier)
	assert.Equal(t, 0.0, explanation.Probability)
}

func TestTelemetryBonus(t *testing.T) {
	e := newTestEngine()

	assessment, _ := e.Fuse(
		analysis.GameHumanScore{AvgHumanLikelihood: 0.5},
		baseline.ContextualAssessment{Overall: baseline.SeverityNormal},
		telemetry.Assessment{SuspicionScore: 1},
	)
	// base 50 + telemetry cap 15.
	assert.InDelta(t, 65, assessment.Score, 1e-9)
}
