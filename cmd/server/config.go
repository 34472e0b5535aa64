package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/devtracker-api/internal/config"
)

// loadAppConfig loads configuration from path, or from the environment and
// an optional ./config.yaml when path is empty.
func loadAppConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"tracing_enabled", cfg.Tracing.Enabled)
	slog.Debug("ordering configuration",
		"gap", cfg.Ordering.Gap,
		"min_gap", cfg.Ordering.MinGap,
		"max_attempts", cfg.Ordering.MaxAttempts)

	return cfg, nil
}
