package cmd

import (
	"os"

	"github.com/gogpu/gg"

	"github.com/go-drift/canopy/cmd/canopy/internal/project"
	"github.com/go-drift/canopy/pkg/config"
	"github.com/go-drift/canopy/pkg/errors"
)

// loadConfig reads --config, or canopy.yaml from the enclosing module root
// (the working directory outside a module). A missing file yields defaults.
func loadConfig() (*config.Config, error) {
	if global.configPath != "" {
		return config.Load(global.configPath)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if root, err := project.FindRoot(dir); err == nil {
		dir = root
	}
	return config.LoadOptional(dir)
}

// setupLogging routes canopy and gg logs to stderr. Flags override the
// configuration.
func setupLogging(cfg *config.Config) {
	level, format := cfg.Log.Level, cfg.Log.Format
	if global.logLevel != "" {
		level = global.logLevel
	}
	if global.logFormat != "" {
		format = global.logFormat
	}
	logger := errors.NewLogger(os.Stderr, level, format)
	errors.SetLogger(logger)
	gg.SetLogger(logger.With("component", "gg"))
}

// prepare loads the configuration and sets up logging.
func prepare() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}
