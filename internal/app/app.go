// Package app wires configuration, logging, storage, and the risk engine
// into one application instance shared by the CLI commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chesswatch/chesswatch/internal/analysis"
	"github.com/chesswatch/chesswatch/internal/baseline"
	"github.com/chesswatch/chesswatch/internal/chess"
	"github.com/chesswatch/chesswatch/internal/config"
	"github.com/chesswatch/chesswatch/internal/ensemble"
	"github.com/chesswatch/chesswatch/internal/ingest"
	"github.com/chesswatch/chesswatch/internal/logging"
	"github.com/chesswatch/chesswatch/internal/storage"
)

// CoreModule holds the core application components
type CoreModule struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *storage.DB
}

// App holds the assembled application.
type App struct {
	Core       CoreModule
	Engine     *ensemble.Engine
	Thresholds *baseline.Table
	Store      *storage.AssessmentStore
	Decoder    ingest.Decoder
	Ctx        context.Context
	Cancel     context.CancelFunc
}

// NewApp initializes and returns a new App instance.
func NewApp() (*App, error) {
	return newApp(true)
}

// NewQuietApp builds an App whose logger writes only to file. Used by
// commands that print JSON to stdout.
func NewQuietApp() (*App, error) {
	return newApp(false)
}

func newApp(logToStderr bool) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLoggerWithStderr(cfg.LogLevel, cfg.LogFile, logToStderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	table, err := loadThresholds(cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	model := analysis.NewModel(analysis.DefaultWeights(), chess.DefaultPieceValues(), logger)
	engine := ensemble.NewEngine(model, baseline.NewAssessor(table), nil, logger)

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		Core: CoreModule{
			Config: cfg,
			Logger: logger,
			DB:     db,
		},
		Engine:     engine,
		Thresholds: table,
		Store:      storage.NewAssessmentStore(db),
		Decoder:    ingest.Decoder{MaxPlies: cfg.MaxPlies},
		Ctx:        ctx,
		Cancel:     cancel,
	}, nil
}

// loadThresholds builds the threshold table, preferring an external
// calibration file when the configuration names one.
func loadThresholds(cfg *config.Config, logger *zap.Logger) (*baseline.Table, error) {
	if cfg.ThresholdsPath == "" {
		return baseline.DefaultTable(), nil
	}
	table, err := baseline.LoadTableFile(cfg.ThresholdsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load threshold calibration: %w", err)
	}
	logger.Info("loaded threshold calibration", zap.String("path", cfg.ThresholdsPath))
	return table, nil
}

// Close gracefully shuts down the application resources.
func (a *App) Close() {
	if a.Cancel != nil {
		a.Cancel()
	}

	if a.Core.DB != nil {
		if err := a.Core.DB.Close(); err != nil {
			a.Core.Logger.Error("failed to close database connection", zap.Error(err))
		}
	}
	if a.Core.Logger != nil {
		_ = a.Core.Logger.Sync()
	}
}
