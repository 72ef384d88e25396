package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strivekit/strivekit-backend/internal/pkg/envutil"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

// Config holds the engine tunables. Values load from an optional YAML file,
// then env vars override.
type Config struct {
	Feasibility FeasibilityConfig `yaml:"feasibility"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type FeasibilityConfig struct {
	MinEnduranceWeeks int     `yaml:"min_endurance_weeks"`
	SafeWeeklyRateKg  float64 `yaml:"safe_weekly_rate_kg"`
}

type DiscoveryConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MinConfidence float64 `yaml:"min_confidence"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

func Default() Config {
	return Config{
		Feasibility: FeasibilityConfig{MinEnduranceWeeks: 12, SafeWeeklyRateKg: 0.5},
		Discovery:   DiscoveryConfig{Enabled: true, MinConfidence: 0.5},
		Worker:      WorkerConfig{Concurrency: 4},
	}
}

// Load reads the YAML file at path (optional; empty path skips the file) and
// applies env overrides on top of defaults.
func Load(path string, log *logger.Logger) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Feasibility.MinEnduranceWeeks = envutil.GetEnvAsInt("MIN_ENDURANCE_WEEKS", cfg.Feasibility.MinEnduranceWeeks, log)
	cfg.Feasibility.SafeWeeklyRateKg = envutil.GetEnvAsFloat("SAFE_WEEKLY_RATE_KG", cfg.Feasibility.SafeWeeklyRateKg, log)
	cfg.Discovery.MinConfidence = envutil.GetEnvAsFloat("DISCOVERY_MIN_CONFIDENCE", cfg.Discovery.MinConfidence, log)
	cfg.Worker.Concurrency = envutil.GetEnvAsInt("WORKER_CONCURRENCY", cfg.Worker.Concurrency, log)

	if cfg.Feasibility.MinEnduranceWeeks < 1 {
		return cfg, fmt.Errorf("min_endurance_weeks must be positive")
	}
	if cfg.Feasibility.SafeWeeklyRateKg <= 0 {
		return cfg, fmt.Errorf("safe_weekly_rate_kg must be positive")
	}
	return cfg, nil
}
