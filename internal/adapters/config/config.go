// Package config loads fb settings from the config file, FB_ environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = "fb"
	envPrefix  = "FB"

	BackendTOML   = "toml"
	BackendSQLite = "sqlite"

	BoostMidpoint = "midpoint"
	BoostRuntime  = "runtime"
)

type Settings struct {
	Engine  domain.Config `mapstructure:"engine"`
	History History       `mapstructure:"history"`
	Log     Log           `mapstructure:"log"`
	Boost   Boost         `mapstructure:"boost"`
}

type History struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Retain  int    `mapstructure:"retain"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Boost selects where tier boost positions are sampled from.
type Boost struct {
	Source string `mapstructure:"source"`
}

// Load reads path, or config.toml from the user config directory when path is
// empty. A missing default file is not an error.
func Load(v *viper.Viper, path string) (Settings, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v, domain.DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Settings{}, fmt.Errorf("%w: read config file: %v", domain.ErrConfiguration, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("%w: decode config: %v", domain.ErrConfiguration, err)
	}
	settings.History.Backend = strings.ToLower(strings.TrimSpace(settings.History.Backend))
	settings.Boost.Source = strings.ToLower(strings.TrimSpace(settings.Boost.Source))

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s Settings) Validate() error {
	var errs []error
	if err := s.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch s.History.Backend {
	case BackendTOML, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown history backend %q", domain.ErrConfiguration, s.History.Backend))
	}
	switch s.Boost.Source {
	case BoostMidpoint, BoostRuntime:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown boost source %q", domain.ErrConfiguration, s.Boost.Source))
	}
	if s.History.Retain < 0 {
		errs = append(errs, fmt.Errorf("%w: history.retain must be non-negative", domain.ErrConfiguration))
	}

	return errors.Join(errs...)
}

// Dir is $XDG_CONFIG_HOME/fb, falling back to ~/.config/fb.
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, configDir), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDir), nil
}

func setDefaults(v *viper.Viper, cfg domain.Config) {
	defaults := map[string]any{
		"engine.weights.urgency":          cfg.Weights.Urgency,
		"engine.weights.complexity":       cfg.Weights.Complexity,
		"engine.weights.novelty":          cfg.Weights.Novelty,
		"engine.weights.relevance":        cfg.Weights.Relevance,
		"engine.tier_thresholds.critical": cfg.TierThresholds.Critical,
		"engine.tier_thresholds.high":     cfg.TierThresholds.High,
		"engine.tier_thresholds.medium":   cfg.TierThresholds.Medium,
		"engine.tier_weights.critical":    cfg.TierWeights.Critical,
		"engine.tier_weights.high":        cfg.TierWeights.High,
		"engine.tier_weights.medium":      cfg.TierWeights.Medium,
		"engine.tier_weights.low":         cfg.TierWeights.Low,
		"engine.tier_boosts.critical.min": cfg.TierBoosts.Critical.Min,
		"engine.tier_boosts.critical.max": cfg.TierBoosts.Critical.Max,
		"engine.tier_boosts.high.min":     cfg.TierBoosts.High.Min,
		"engine.tier_boosts.high.max":     cfg.TierBoosts.High.Max,
		"engine.keywords.urgency":         cfg.Keywords.Urgency,
		"engine.keywords.novelty":         cfg.Keywords.Novelty,
		"engine.keywords.technical":       cfg.Keywords.Technical,
		"engine.max_foci":                 cfg.MaxFoci,
		"engine.attention_span":           cfg.AttentionSpan,
		"engine.min_focus_intensity":      cfg.MinFocusIntensity,
		"engine.change_threshold":         cfg.ChangeThreshold,
		"engine.total_resources":          cfg.TotalResources,
		"engine.base_processing_time":     cfg.BaseProcessingTime,
		"engine.history_capacity":         cfg.HistoryCapacity,
		"engine.novelty_history_capacity": cfg.NoveltyHistoryCapacity,
		"engine.urgency_lookahead":        cfg.UrgencyLookahead,
		"engine.min_cognitive_load":       cfg.MinCognitiveLoad,
		"engine.maintenance_interval":     cfg.MaintenanceInterval,
		"engine.strict":                   cfg.Strict,
		"history.backend":                 BackendTOML,
		"history.path":                    "",
		"history.retain":                  1000,
		"log.level":                       "warn",
		"boost.source":                    BoostMidpoint,
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
