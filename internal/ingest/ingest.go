// Package ingest decodes normalized game submissions produced by the
// preprocessing service into the engine's input types. Per-move problems are
// degraded, never fatal: a move that cannot be resolved is passed through
// with an empty rules snapshot so the analysis layer skips and records it.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chesswatch/chesswatch/internal/analysis"
	"github.com/chesswatch/chesswatch/internal/baseline"
	"github.com/chesswatch/chesswatch/internal/chess"
	"github.com/chesswatch/chesswatch/internal/ensemble"
	"github.com/chesswatch/chesswatch/internal/telemetry"
)

// Submission is the wire shape of a preprocessed game.
type Submission struct {
	GameID      string          `json:"game_id"`
	Player      string          `json:"player"`
	Title       string          `json:"title,omitempty"`
	TimeControl string          `json:"time_control,omitempty"`
	Result      string          `json:"result,omitempty"`
	Moves       []MoveRecord    `json:"moves"`
	Metrics     MetricsRecord   `json:"metrics"`
	Telemetry   TelemetryRecord `json:"telemetry"`
}

// MoveRecord is one ply on the wire.
type MoveRecord struct {
	Ply        int             `json:"ply"`
	Mover      string          `json:"mover"`
	Played     chess.Move      `json:"played"`
	EngineBest *chess.Move     `json:"engine_best,omitempty"`
	CPLoss     *float64        `json:"cp_loss,omitempty"`
	Position   *PositionRecord `json:"position"`
}

// PositionRecord is the pre-move rules snapshot on the wire.
type PositionRecord struct {
	Turn       string                       `json:"turn"`
	Pieces     map[chess.Square]chess.Piece `json:"pieces"`
	LegalMoves []chess.LegalMove            `json:"legal_moves"`
	Attacked   map[string][]chess.Square    `json:"attacked"`
}

// MetricsRecord carries the aggregate game metrics; absent fields stay nil
// and default downstream to non-anomalous values.
type MetricsRecord struct {
	EngineAgreement     *float64 `json:"engine_agreement,omitempty"`
	Top2EngineAgreement *float64 `json:"top2_engine_agreement,omitempty"`
	AverageCPL          *float64 `json:"average_centipawn_loss,omitempty"`
	TimingScore         *float64 `json:"timing_score,omitempty"`
}

// TelemetryRecord carries optional behavioral events.
type TelemetryRecord struct {
	Clicks []telemetry.ClickEvent   `json:"clicks,omitempty"`
	Paths  []telemetry.MovementPath `json:"paths,omitempty"`
}

// Decoder converts submissions into engine input. MaxPlies bounds the move
// count before any analysis runs; zero means no bound.
type Decoder struct {
	MaxPlies int
}

// Decode reads one submission document. A malformed document is an error; a
// malformed individual move is not.
func (d Decoder) Decode(r io.Reader) (ensemble.Game, error) {
	var sub Submission
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sub); err != nil {
		return ensemble.Game{}, fmt.Errorf("decode submission: %w", err)
	}
	return d.Convert(sub)
}

// Convert maps a decoded submission into engine input, enforcing the ply
// bound.
func (d Decoder) Convert(sub Submission) (ensemble.Game, error) {
	if d.MaxPlies > 0 && len(sub.Moves) > d.MaxPlies {
		return ensemble.Game{}, fmt.Errorf("game %s has %d plies, limit is %d", sub.GameID, len(sub.Moves), d.MaxPlies)
	}

	moves := make([]analysis.MoveInput, 0, len(sub.Moves))
	for _, rec := range sub.Moves {
		moves = append(moves, convertMove(rec))
	}

	return ensemble.Game{
		GameID:      sub.GameID,
		Player:      sub.Player,
		Title:       sub.Title,
		TimeControl: sub.TimeControl,
		Result:      sub.Result,
		Moves:       moves,
		Metrics: baseline.GameMetrics{
			EngineAgreement:     sub.Metrics.EngineAgreement,
			Top2EngineAgreement: sub.Metrics.Top2EngineAgreement,
			AverageCPL:          sub.Metrics.AverageCPL,
			TimingScore:         sub.Metrics.TimingScore,
		},
		Clicks: sub.Telemetry.Clicks,
		Paths:  sub.Telemetry.Paths,
	}, nil
}

// convertMove builds the per-ply input. A record without a usable position
// keeps a nil snapshot; the model skips and records it.
func convertMove(rec MoveRecord) analysis.MoveInput {
	in := analysis.MoveInput{
		Ply:        rec.Ply,
		Played:     rec.Played,
		EngineBest: rec.EngineBest,
		CPLoss:     rec.CPLoss,
	}

	mover, err := chess.ParseColor(rec.Mover)
	if err != nil {
		return in
	}
	in.Mover = mover

	if rec.Position == nil {
		return in
	}
	turn, err := chess.ParseColor(rec.Position.Turn)
	if err != nil {
		return in
	}

	attacked := make(map[chess.Color][]chess.Square, len(rec.Position.Attacked))
	for colorName, squares := range rec.Position.Attacked {
		color, err := chess.ParseColor(colorName)
		if err != nil {
			continue
		}
		attacked[color] = squares
	}

	in.Position = chess.NewPosition(turn, rec.Position.Pieces, rec.Position.LegalMoves, attacked)
	return in
}
