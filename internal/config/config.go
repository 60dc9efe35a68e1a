package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modelgarden/nodeup/internal/models"
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() models.Config {
	return models.Config{
		ManifestPath:    "nodes.csv",
		InstallDir:      "custom_nodes",
		ProgressPath:    "progress.json",
		GitBin:          "git",
		PipBin:          "pip",
		PollIntervalSec: 2.0,
		LogLevel:        "info",
		Runner: models.RunnerConfig{
			Type: "local",
		},
	}
}

// Load loads and parses a nodeup.yaml file.
func Load(path string) (models.Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults for missing values
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = "nodes.csv"
	}
	if cfg.InstallDir == "" {
		cfg.InstallDir = "custom_nodes"
	}
	if cfg.ProgressPath == "" {
		cfg.ProgressPath = "progress.json"
	}
	if cfg.GitBin == "" {
		cfg.GitBin = "git"
	}
	if cfg.PipBin == "" {
		cfg.PipBin = "pip"
	}
	if cfg.PollIntervalSec <= 0 {
		cfg.PollIntervalSec = 2.0
	}
	if cfg.Runner.Type == "" {
		cfg.Runner.Type = "local"
	}

	if cfg.StepTimeoutSec < 0 {
		return cfg, fmt.Errorf("step_timeout_sec must not be negative")
	}
	if cfg.Runner.Type != "local" && cfg.Runner.Image == "" {
		return cfg, fmt.Errorf("runner type %q requires an image", cfg.Runner.Type)
	}

	return cfg, nil
}
