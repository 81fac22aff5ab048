// Package api exposes the assessment engine over HTTP. Authentication,
// RBAC, and audit middleware belong to the fronting gateway; handlers here
// stay self-contained so they can be mounted behind one.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/chesswatch/chesswatch/internal/ensemble"
	"github.com/chesswatch/chesswatch/internal/ingest"
	"github.com/chesswatch/chesswatch/internal/storage"
)

// Server is the HTTP front of the risk engine.
type Server struct {
	engine     *ensemble.Engine
	decoder    ingest.Decoder
	store      *storage.AssessmentStore
	logger     *zap.Logger
	httpServer *http.Server
	startTime  time.Time
}

// AssessResponse is the body returned by POST /v1/assess.
type AssessResponse struct {
	GameID      string                    `json:"game_id"`
	Assessment  ensemble.RiskAssessment   `json:"assessment"`
	Explanation ensemble.ModelExplanation `json:"explanation"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates the API server. store may be nil to disable persistence.
func NewServer(engine *ensemble.Engine, decoder ingest.Decoder, store *storage.AssessmentStore, logger *zap.Logger, listenAddr string) *Server {
	s := &Server{
		engine:  engine,
		decoder: decoder,
		store:   store,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/assess", s.handleAssess)
	mux.HandleFunc("/v1/assessments", s.handleAssessments)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         listenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.startTime = time.Now()
	s.logger.Info("starting API server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	game, err := s.decoder.Decode(r.Body)
	if err != nil {
		s.logger.Warn("rejected submission", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment, explanation := s.engine.Assess(game)

	if s.store != nil {
		_, err := s.store.Save(&storage.StoredAssessment{
			GameID:      game.GameID,
			Player:      game.Player,
			Title:       game.Title,
			TimeControl: game.TimeControl,
			Assessment:  assessment,
			Explanation: explanation,
		})
		if err != nil {
			// The assessment is still valid; persistence failure is the
			// caller's signal to retry, not a reason to drop the result.
			s.logger.Error("failed to persist assessment",
				zap.String("game_id", game.GameID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, AssessResponse{
		GameID:      game.GameID,
		Assessment:  assessment,
		Explanation: explanation,
	})
}

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "persistence disabled")
		return
	}

	if gameID := r.URL.Query().Get("game_id"); gameID != "" {
		rec, err := s.store.GetByGameID(gameID)
		if err != nil {
			s.logger.Error("failed to load assessment", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "no assessment for game")
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := s.store.ListRecent(limit)
	if err != nil {
		s.logger.Error("failed to list assessments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
