// Package analysis implements the per-move human-likelihood model: move
// obviousness, position complexity, and the aggregate game score the risk
// engine fuses with the other signals.
package analysis

import (
	"github.com/chesswatch/chesswatch/internal/chess"
)

// ObviousnessClassifier decides whether a move is one a human finds without
// calculation. Pure function of the pre-move position and the resolved move.
type ObviousnessClassifier struct {
	values chess.PieceValues
}

// NewObviousnessClassifier builds a classifier over the given material scale.
func NewObviousnessClassifier(values chess.PieceValues) *ObviousnessClassifier {
	return &ObviousnessClassifier{values: values}
}

// Classify returns true iff the move is the only legal move, delivers check,
// or captures a piece worth at least as much as the moving piece.
func (c *ObviousnessClassifier) Classify(pos *chess.Position, lm chess.LegalMove) bool {
	if pos.LegalMoveCount() == 1 {
		return true
	}
	if lm.GivesCheck {
		return true
	}
	if lm.Captured != "" {
		mover, ok := pos.PieceAt(lm.Move.From)
		if !ok {
			return false
		}
		return c.values.Value(lm.Captured) >= c.values.Value(mover.Type)
	}
	return false
}
