package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port       int              `json:"port"`
	DBPath     string           `json:"db_path"`
	JWTSecret  string           `json:"jwt_secret"`
	StagingDir string           `json:"staging_dir"`
	CORSHosts  []string         `json:"cors_hosts"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
	FileStore  FileStoreConfig  `json:"file_store"`
	LogConfig  logger.LogConfig `json:"log_config"`
	Jobs       JobsConfig       `json:"jobs"`
}

type RateLimitConfig struct {
	WindowMinutes int `json:"window_minutes"`
	MaxRequests   int `json:"max_requests"`
}

// FileStoreConfig carries the store type plus a type-specific payload decoded
// by the selected store factory.
type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type JobsConfig struct {
	StagingSweepSpec     string `json:"staging_sweep_spec"`
	StagingMaxAgeMinutes int    `json:"staging_max_age_minutes"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.StagingDir == "" {
		cfg.StagingDir = os.TempDir()
	}
	if cfg.RateLimit.WindowMinutes == 0 {
		cfg.RateLimit.WindowMinutes = 15
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 100
	}
	if cfg.FileStore.Type == "" {
		return nil, fmt.Errorf("file_store.type is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Jobs.StagingSweepSpec == "" {
		cfg.Jobs.StagingSweepSpec = "@every 30m"
	}
	if cfg.Jobs.StagingMaxAgeMinutes == 0 {
		cfg.Jobs.StagingMaxAgeMinutes = 60
	}
	return &cfg, nil
}
