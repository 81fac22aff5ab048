// Package chess holds the board and move types consumed by the analysis
// pipeline. Rules computation (legality, checks, attacks) happens upstream in
// the preprocessing service; this package only represents the answers as an
// immutable snapshot with pure query methods.
package chess

import (
	"fmt"
	"strings"
)

// Color identifies the side a piece belongs to.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// PieceType is a piece kind independent of color.
type PieceType string

const (
	Pawn   PieceType = "pawn"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Rook   PieceType = "rook"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

// Piece is a colored piece on the board.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// Square is a board coordinate in algebraic notation ("e4").
type Square string

// Rank returns the square's rank as 1..8, or 0 for a malformed square.
func (s Square) Rank() int {
	if len(s) != 2 {
		return 0
	}
	r := int(s[1] - '0')
	if r < 1 || r > 8 {
		return 0
	}
	return r
}

// Valid reports whether the square names a real board coordinate.
func (s Square) Valid() bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'h' && s.Rank() != 0
}

// Move is a single move in coordinate form. Promotion is the piece promoted
// to, empty for non-promotions.
type Move struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// UCI renders the move in UCI coordinate notation ("e2e4", "e7e8q").
func (m Move) UCI() string {
	var b strings.Builder
	b.WriteString(string(m.From))
	b.WriteString(string(m.To))
	switch m.Promotion {
	case Knight:
		b.WriteByte('n')
	case Bishop:
		b.WriteByte('b')
	case Rook:
		b.WriteByte('r')
	case Queen:
		b.WriteByte('q')
	}
	return b.String()
}

// Valid reports whether both endpoints are real squares.
func (m Move) Valid() bool {
	return m.From.Valid() && m.To.Valid()
}

func (m Move) String() string {
	return m.UCI()
}

// PieceValues maps piece kinds to material value. Injected into the analysis
// layer so calibration tests can substitute alternates.
type PieceValues map[PieceType]int

// DefaultPieceValues is the conventional material scale. The king scores zero
// so that king moves never count as winning captures.
func DefaultPieceValues() PieceValues {
	return PieceValues{
		Pawn:   1,
		Knight: 3,
		Bishop: 3,
		Rook:   5,
		Queen:  9,
		King:   0,
	}
}

// Value returns the material value of a piece type, 0 for unknown kinds.
func (pv PieceValues) Value(t PieceType) int {
	return pv[t]
}

// ParseColor normalizes a color string, erroring on anything unrecognized.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return "", fmt.Errorf("unrecognized color %q", s)
}
