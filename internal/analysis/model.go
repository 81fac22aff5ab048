package analysis

import (
	"math"

	"go.uber.org/zap"

	"github.com/chesswatch/chesswatch/internal/chess"
)

// MoveInput is one ply as delivered by the preprocessing service: the
// pre-move position snapshot, the move played, and optionally the reference
// engine's top choice and the centipawn loss of the played move.
type MoveInput struct {
	Ply        int
	Mover      chess.Color
	Position   *chess.Position
	Played     chess.Move
	EngineBest *chess.Move
	CPLoss     *float64
}

// MoveObservation is the per-ply result of the model. Observations are
// consumed immediately by aggregation and never persisted.
type MoveObservation struct {
	Ply             int
	Mover           chess.Color
	Obvious         bool
	Complexity      float64
	CPLoss          float64
	HasCPLoss       bool
	EngineMatch     bool
	HumanLikelihood float64
}

// GameHumanScore aggregates the per-move likelihoods for one game.
type GameHumanScore struct {
	TotalMoves                int
	AvgHumanLikelihood        float64
	NonObviousEngineMoveCount int
	SuspiciousMoves           []MoveObservation
	HumanScore                float64
	SkippedMoves              int
}

// Model computes human-likelihood scores for a game. Stateless after
// construction; safe for concurrent use.
type Model struct {
	weights    Weights
	classifier *ObviousnessClassifier
	logger     *zap.Logger
}

// NewModel builds a model over the given calibration and material scale.
func NewModel(weights Weights, values chess.PieceValues, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		weights:    weights,
		classifier: NewObviousnessClassifier(values),
		logger:     logger,
	}
}

// EvaluateMove scores a single ply. ok is false when the record is malformed
// (missing position, illegal or unparseable move); callers skip such plies.
func (m *Model) EvaluateMove(in MoveInput) (MoveObservation, bool) {
	if in.Position == nil || !in.Played.Valid() {
		return MoveObservation{}, false
	}
	lm, legal := in.Position.MoveInfo(in.Played)
	if !legal {
		return MoveObservation{}, false
	}

	obs := MoveObservation{
		Ply:        in.Ply,
		Mover:      in.Mover,
		Obvious:    m.classifier.Classify(in.Position, lm),
		Complexity: EstimateComplexity(in.Position),
	}
	if in.CPLoss != nil {
		obs.CPLoss = *in.CPLoss
		obs.HasCPLoss = true
	}
	if in.EngineBest != nil {
		obs.EngineMatch = in.Played.UCI() == in.EngineBest.UCI()
	}

	obs.HumanLikelihood = m.likelihood(obs, lm)
	return obs, true
}

// likelihood applies the band table plus the capture and backward-move
// adjustments.
func (m *Model) likelihood(obs MoveObservation, lm chess.LegalMove) float64 {
	var l float64
	switch {
	case obs.Obvious:
		// Obvious moves score high regardless of engine eval.
		l = m.weights.ObviousLikelihood
	case !obs.HasCPLoss:
		// No engine eval for the ply: treat as a large loss.
		l = m.weights.baseLikelihood(math.Inf(1), obs.Complexity)
	default:
		l = m.weights.baseLikelihood(obs.CPLoss, obs.Complexity)
	}

	if lm.Captured != "" {
		l += m.weights.CaptureBonus
		if l > 1 {
			l = 1
		}
	}
	if m.isBackward(obs.Mover, lm.Move) && obs.HasCPLoss && obs.CPLoss < m.weights.BackwardCPLossLimit {
		l *= m.weights.BackwardFactor
	}
	return l
}

// isBackward reports whether the move travels toward the mover's own back
// rank.
func (m *Model) isBackward(mover chess.Color, mv chess.Move) bool {
	from, to := mv.From.Rank(), mv.To.Rank()
	if mover == chess.White {
		return to < from
	}
	return to > from
}

// EvaluateGame scores every ply and aggregates. Malformed plies are skipped,
// logged, and counted; they never fail the call. Zero analyzable moves yields
// the benefit-of-the-doubt score of 100.
func (m *Model) EvaluateGame(moves []MoveInput) GameHumanScore {
	score := GameHumanScore{}
	var sum float64

	for _, in := range moves {
		obs, ok := m.EvaluateMove(in)
		if !ok {
			score.SkippedMoves++
			m.logger.Warn("skipping malformed move record",
				zap.Int("ply", in.Ply),
				zap.String("move", in.Played.UCI()))
			continue
		}

		score.TotalMoves++
		sum += obs.HumanLikelihood
		if obs.EngineMatch && !obs.Obvious {
			score.NonObviousEngineMoveCount++
		}
		if obs.HumanLikelihood < m.weights.SuspiciousThreshold {
			score.SuspiciousMoves = append(score.SuspiciousMoves, obs)
		}
	}

	if score.TotalMoves == 0 {
		score.AvgHumanLikelihood = 1.0
		score.HumanScore = 100
		return score
	}

	score.AvgHumanLikelihood = sum / float64(score.TotalMoves)

	penalty := float64(score.NonObviousEngineMoveCount) * m.weights.EnginePenaltyPerMove
	if penalty > m.weights.EnginePenaltyCap {
		penalty = m.weights.EnginePenaltyCap
	}

	score.HumanScore = clamp((score.AvgHumanLikelihood-penalty)*100, 0, 100)
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
