package main

import (
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/pref-assess/internal/assessment"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage/factory"
	"github.com/DjordjeVuckovic/pref-assess/pkg/config/env"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AssessConfig struct {
	StorageConfig factory.StorageConfig
	Strategy      assessment.Config
	// PoolPath optionally names a pool file imported at startup.
	PoolPath string
}

func (as *AppConfig) Load() (*AssessConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/assess_api/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	strategyCfg, err := assessment.LoadConfig()
	if err != nil {
		slog.Error("Failed to load assessment configuration from environment", "error", err)
		return nil, err
	}

	return &AssessConfig{
		StorageConfig: *storageCfg,
		Strategy:      *strategyCfg,
		PoolPath:      os.Getenv("POOL_PATH"),
	}, nil
}
