package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultListenAddr = "127.0.0.1:8088"
	DefaultLogLevel   = "info"
	DefaultMaxPlies   = 600
)

// Config holds the application configuration
type Config struct {
	ListenAddr     string
	LogLevel       string
	LogFile        string
	DBPath         string
	MaxPlies       int
	ThresholdsPath string
	ConfigPath     string
	DataDir        string
}

type fileConfig struct {
	Server struct {
		ListenAddr string `toml:"listen_addr"`
	} `toml:"server"`
	Engine struct {
		MaxPlies       int    `toml:"max_plies"`
		ThresholdsFile string `toml:"thresholds_file"`
	} `toml:"engine"`
	Logging struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"logging"`
	Storage struct {
		DBPath string `toml:"db_path"`
	} `toml:"storage"`
}

// LoadConfig loads configuration from file, environment variables, and defaults
func LoadConfig() (*Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(dataDir, "config.toml")

	if err := os.MkdirAll(filepath.Join(dataDir, "logs"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Defaults
	cfg := &Config{
		ListenAddr:     DefaultListenAddr,
		LogLevel:       DefaultLogLevel,
		LogFile:        filepath.Join(dataDir, "logs", "chesswatch.log"),
		DBPath:         filepath.Join(dataDir, "assessments.sqlite3"),
		MaxPlies:       DefaultMaxPlies,
		ThresholdsPath: "",
		ConfigPath:     configPath,
		DataDir:        dataDir,
	}

	// Config file overrides, when present
	if _, err := os.Stat(configPath); err == nil {
		fileData, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var parsed fileConfig
		if err := toml.Unmarshal(fileData, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
		applyFileConfig(cfg, parsed)
	}

	applyEnvOverrides(cfg)

	if cfg.MaxPlies <= 0 {
		return nil, fmt.Errorf("max_plies must be positive, got %d", cfg.MaxPlies)
	}

	return cfg, nil
}

func applyFileConfig(cfg *Config, parsed fileConfig) {
	if parsed.Server.ListenAddr != "" {
		cfg.ListenAddr = parsed.Server.ListenAddr
	}
	if parsed.Engine.MaxPlies != 0 {
		cfg.MaxPlies = parsed.Engine.MaxPlies
	}
	if parsed.Engine.ThresholdsFile != "" {
		cfg.ThresholdsPath = parsed.Engine.ThresholdsFile
	}
	if parsed.Logging.Level != "" {
		cfg.LogLevel = parsed.Logging.Level
	}
	if parsed.Logging.File != "" {
		cfg.LogFile = parsed.Logging.File
	}
	if parsed.Storage.DBPath != "" {
		cfg.DBPath = parsed.Storage.DBPath
	}
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("CHESSWATCH_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if level := os.Getenv("CHESSWATCH_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if logFile := os.Getenv("CHESSWATCH_LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}
	if dbPath := os.Getenv("CHESSWATCH_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if thresholds := os.Getenv("CHESSWATCH_THRESHOLDS"); thresholds != "" {
		cfg.ThresholdsPath = thresholds
	}
	if plies := os.Getenv("CHESSWATCH_MAX_PLIES"); plies != "" {
		var n int
		if _, err := fmt.Sscanf(plies, "%d", &n); err == nil && n > 0 {
			cfg.MaxPlies = n
		}
	}
}

// resolveDataDir returns the chesswatch home directory, honoring
// CHESSWATCH_DIR for tests and containerized deployments.
func resolveDataDir() (string, error) {
	if dir := os.Getenv("CHESSWATCH_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".chesswatch"), nil
}
