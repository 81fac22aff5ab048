package analysis

import (
	"github.com/chesswatch/chesswatch/internal/chess"
)

const (
	branchingCeiling = 40.0
	tensionCeiling   = 10.0
)

// EstimateComplexity scores how demanding a position is for a human, in
// [0,1]. Branching is the legal move count against a 40-move ceiling; tension
// is the number of occupied squares attacked by the occupant's opponent
// against a 10-square ceiling. The estimate is their mean.
func EstimateComplexity(pos *chess.Position) float64 {
	branching := float64(pos.LegalMoveCount()) / branchingCeiling
	if branching > 1 {
		branching = 1
	}

	contested := 0
	for _, sq := range pos.OccupiedSquares() {
		pc, ok := pos.PieceAt(sq)
		if !ok {
			continue
		}
		if pos.AttackedBy(pc.Color.Opponent(), sq) {
			contested++
		}
	}
	tension := float64(contested) / tensionCeiling
	if tension > 1 {
		tension = 1
	}

	return (branching + tension) / 2
}
