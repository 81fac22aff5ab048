package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chesswatch/chesswatch/internal/ensemble"
)

// StoredAssessment is one persisted assessment row.
type StoredAssessment struct {
	ID          int64                     `json:"id"`
	GameID      string                    `json:"game_id"`
	Player      string                    `json:"player"`
	Title       string                    `json:"title"`
	TimeControl string                    `json:"time_control"`
	Assessment  ensemble.RiskAssessment   `json:"assessment"`
	Explanation ensemble.ModelExplanation `json:"explanation"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// AssessmentStore is the assessment repository.
type AssessmentStore struct {
	db *DB
}

// NewAssessmentStore creates a repository over an open database.
func NewAssessmentStore(db *DB) *AssessmentStore {
	return &AssessmentStore{db: db}
}

// Save persists an assessment and returns its row id.
func (s *AssessmentStore) Save(rec *StoredAssessment) (int64, error) {
	actions, err := json.Marshal(rec.Assessment.RecommendedActions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recommended actions: %w", err)
	}
	factors, err := json.Marshal(rec.Explanation.TopFactors)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal factors: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.conn.Exec(`
		INSERT INTO assessments
			(game_id, player, title, time_control, score, tier,
			 recommended_actions, probability, summary, top_factors,
			 skipped_moves, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.Player, rec.Title, rec.TimeControl,
		rec.Assessment.Score, string(rec.Assessment.Tier),
		string(actions), rec.Explanation.Probability, rec.Explanation.Summary,
		string(factors), rec.Explanation.SkippedMoves,
		createdAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to save assessment: %w", err)
	}
	return res.LastInsertId()
}

// GetByGameID returns the most recent assessment for a game, or nil.
func (s *AssessmentStore) GetByGameID(gameID string) (*StoredAssessment, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, game_id, player, title, time_control, score, tier,
		       recommended_actions, probability, summary, top_factors,
		       skipped_moves, created_at
		FROM assessments
		WHERE game_id = ?
		ORDER BY id DESC
		LIMIT 1`, gameID)

	rec, err := scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListRecent returns up to limit assessments, newest first.
func (s *AssessmentStore) ListRecent(limit int) ([]*StoredAssessment, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.conn.Query(`
		SELECT id, game_id, player, title, time_control, score, tier,
		       recommended_actions, probability, summary, top_factors,
		       skipped_moves, created_at
		FROM assessments
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var out []*StoredAssessment
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*StoredAssessment, error) {
	var (
		rec       StoredAssessment
		tier      string
		actions   string
		factors   string
		createdAt string
	)
	err := row.Scan(&rec.ID, &rec.GameID, &rec.Player, &rec.Title, &rec.TimeControl,
		&rec.Assessment.Score, &tier, &actions, &rec.Explanation.Probability,
		&rec.Explanation.Summary, &factors, &rec.Explanation.SkippedMoves, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.Assessment.Tier = ensemble.Tier(tier)
	if err := json.Unmarshal([]byte(actions), &rec.Assessment.RecommendedActions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommended actions: %w", err)
	}
	if err := json.Unmarshal([]byte(factors), &rec.Explanation.TopFactors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal factors: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}
