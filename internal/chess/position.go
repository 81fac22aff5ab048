package chess

// LegalMove is one legal move in a position together with the rules facts the
// analysis layer needs about it. GivesCheck and Captured are computed by the
// upstream rules engine, not here.
type LegalMove struct {
	Move       Move      `json:"move"`
	GivesCheck bool      `json:"gives_check"`
	Captured   PieceType `json:"captured,omitempty"`
}

// Position is an immutable pre-move snapshot: piece placement, side to move,
// the legal move set, and per-color attacked squares. All methods are pure
// queries; nothing mutates a Position after construction.
type Position struct {
	turn     Color
	pieces   map[Square]Piece
	legal    []LegalMove
	legalIdx map[string]LegalMove
	attacked map[Color]map[Square]bool
}

// NewPosition builds a position snapshot. The inputs are copied so later
// mutation of the caller's maps and slices cannot leak in.
func NewPosition(turn Color, pieces map[Square]Piece, legal []LegalMove, attacked map[Color][]Square) *Position {
	p := &Position{
		turn:     turn,
		pieces:   make(map[Square]Piece, len(pieces)),
		legal:    make([]LegalMove, len(legal)),
		legalIdx: make(map[string]LegalMove, len(legal)),
		attacked: map[Color]map[Square]bool{White: {}, Black: {}},
	}
	for sq, pc := range pieces {
		p.pieces[sq] = pc
	}
	copy(p.legal, legal)
	for _, lm := range legal {
		p.legalIdx[lm.Move.UCI()] = lm
	}
	for color, squares := range attacked {
		set := p.attacked[color]
		if set == nil {
			continue
		}
		for _, sq := range squares {
			set[sq] = true
		}
	}
	return p
}

// Turn returns the side to move.
func (p *Position) Turn() Color {
	return p.turn
}

// LegalMoves returns a copy of the legal move set.
func (p *Position) LegalMoves() []LegalMove {
	out := make([]LegalMove, len(p.legal))
	copy(out, p.legal)
	return out
}

// LegalMoveCount returns the number of legal moves for the side to move.
func (p *Position) LegalMoveCount() int {
	return len(p.legal)
}

// PieceAt returns the piece on a square, if any.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	pc, ok := p.pieces[sq]
	return pc, ok
}

// AttackedBy reports whether any piece of the given color attacks the square.
func (p *Position) AttackedBy(color Color, sq Square) bool {
	return p.attacked[color][sq]
}

// MoveInfo resolves a move against the legal move set, returning its rules
// annotations. ok is false for moves that are not legal in this position.
func (p *Position) MoveInfo(m Move) (LegalMove, bool) {
	lm, ok := p.legalIdx[m.UCI()]
	return lm, ok
}

// OccupiedSquares returns every square holding a piece.
func (p *Position) OccupiedSquares() []Square {
	out := make([]Square, 0, len(p.pieces))
	for sq := range p.pieces {
		out = append(out, sq)
	}
	return out
}
