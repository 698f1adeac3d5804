package domain

import (
	"fmt"
	"math"
	"time"
)

const weightSumTolerance = 1e-3

type Keywords struct {
	Urgency   []string `mapstructure:"urgency" toml:"urgency"`
	Novelty   []string `mapstructure:"novelty" toml:"novelty"`
	Technical []string `mapstructure:"technical" toml:"technical"`
}

type Config struct {
	Weights        Weights        `mapstructure:"weights"`
	TierThresholds TierThresholds `mapstructure:"tier_thresholds"`
	TierWeights    TierWeights    `mapstructure:"tier_weights"`
	TierBoosts     TierBoosts     `mapstructure:"tier_boosts"`
	Keywords       Keywords       `mapstructure:"keywords"`

	// MaxFoci bounds the active focus set after every update.
	MaxFoci           int           `mapstructure:"max_foci"`
	AttentionSpan     time.Duration `mapstructure:"attention_span"`
	MinFocusIntensity float64       `mapstructure:"min_focus_intensity"`
	ChangeThreshold   float64       `mapstructure:"change_threshold"`

	TotalResources     float64       `mapstructure:"total_resources"`
	BaseProcessingTime time.Duration `mapstructure:"base_processing_time"`

	HistoryCapacity        int           `mapstructure:"history_capacity"`
	NoveltyHistoryCapacity int           `mapstructure:"novelty_history_capacity"`
	UrgencyLookahead       time.Duration `mapstructure:"urgency_lookahead"`
	MinCognitiveLoad       float64       `mapstructure:"min_cognitive_load"`
	MaintenanceInterval    time.Duration `mapstructure:"maintenance_interval"`

	// Strict makes RunCycle return processing errors instead of an error result.
	Strict bool `mapstructure:"strict"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Urgency:    0.3,
			Complexity: 0.25,
			Novelty:    0.2,
			Relevance:  0.25,
		},
		TierThresholds: TierThresholds{Critical: 0.8, High: 0.6, Medium: 0.4},
		TierWeights:    TierWeights{Critical: 1.0, High: 0.8, Medium: 0.6, Low: 0.4},
		TierBoosts: TierBoosts{
			Critical: BoostRange{Min: 1.5, Max: 2.5},
			High:     BoostRange{Min: 1.1, Max: 1.8},
		},
		Keywords: Keywords{
			Urgency:   []string{"urgent", "critical", "emergency", "immediate", "asap", "deadline", "now", "overdue", "blocker"},
			Novelty:   []string{"new", "novel", "first", "unprecedented", "unknown", "discovery", "unexpected"},
			Technical: []string{"algorithm", "api", "architecture", "cache", "compiler", "concurrency", "database", "distributed", "encryption", "index", "kernel", "latency", "migration", "network", "protocol", "query", "schema", "throughput"},
		},
		MaxFoci:                5,
		AttentionSpan:          30 * time.Second,
		MinFocusIntensity:      0.1,
		ChangeThreshold:        0.05,
		TotalResources:         100,
		BaseProcessingTime:     time.Second,
		HistoryCapacity:        100,
		NoveltyHistoryCapacity: 20,
		UrgencyLookahead:       24 * time.Hour,
		MinCognitiveLoad:       0.1,
		MaintenanceInterval:    time.Second,
	}
}

func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{"urgency": w.Urgency, "complexity": w.Complexity, "novelty": w.Novelty, "relevance": w.Relevance} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: weight %s must be non-negative", ErrConfiguration, name)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1, got %.4f", ErrConfiguration, sum)
	}
	if err := c.TierThresholds.Validate(); err != nil {
		return err
	}
	if err := c.TierWeights.Validate(); err != nil {
		return err
	}
	if err := c.TierBoosts.Validate(); err != nil {
		return err
	}
	if c.MaxFoci < 1 {
		return fmt.Errorf("%w: max_foci must be at least 1", ErrConfiguration)
	}
	if c.AttentionSpan <= 0 {
		return fmt.Errorf("%w: attention_span must be positive", ErrConfiguration)
	}
	if c.MinFocusIntensity <= 0 || c.MinFocusIntensity >= 1 {
		return fmt.Errorf("%w: min_focus_intensity must lie in (0,1)", ErrConfiguration)
	}
	if c.ChangeThreshold < 0 {
		return fmt.Errorf("%w: change_threshold must be non-negative", ErrConfiguration)
	}
	if c.TotalResources <= 0 || math.IsInf(c.TotalResources, 0) {
		return fmt.Errorf("%w: total_resources must be a positive number", ErrConfiguration)
	}
	if c.BaseProcessingTime <= 0 {
		return fmt.Errorf("%w: base_processing_time must be positive", ErrConfiguration)
	}
	if c.HistoryCapacity < 1 || c.NoveltyHistoryCapacity < 1 {
		return fmt.Errorf("%w: history capacities must be at least 1", ErrConfiguration)
	}
	if c.UrgencyLookahead <= 0 {
		return fmt.Errorf("%w: urgency_lookahead must be positive", ErrConfiguration)
	}
	if c.MinCognitiveLoad < 0 || c.MinCognitiveLoad > 1 {
		return fmt.Errorf("%w: min_cognitive_load must lie in [0,1]", ErrConfiguration)
	}
	if c.MaintenanceInterval <= 0 {
		return fmt.Errorf("%w: maintenance_interval must be positive", ErrConfiguration)
	}

	return nil
}
