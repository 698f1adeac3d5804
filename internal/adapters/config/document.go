package config

import (
	"fmt"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
)

type document struct {
	Engine  engineDocument  `toml:"engine"`
	History historyDocument `toml:"history"`
	Log     logDocument     `toml:"log"`
	Boost   boostDocument   `toml:"boost"`
}

type engineDocument struct {
	MaxFoci                int     `toml:"max_foci"`
	AttentionSpan          string  `toml:"attention_span"`
	MinFocusIntensity      float64 `toml:"min_focus_intensity"`
	ChangeThreshold        float64 `toml:"change_threshold"`
	TotalResources         float64 `toml:"total_resources"`
	BaseProcessingTime     string  `toml:"base_processing_time"`
	HistoryCapacity        int     `toml:"history_capacity"`
	NoveltyHistoryCapacity int     `toml:"novelty_history_capacity"`
	UrgencyLookahead       string  `toml:"urgency_lookahead"`
	MinCognitiveLoad       float64 `toml:"min_cognitive_load"`
	MaintenanceInterval    string  `toml:"maintenance_interval"`
	Strict                 bool    `toml:"strict"`

	Weights        domain.Weights        `toml:"weights"`
	TierThresholds domain.TierThresholds `toml:"tier_thresholds"`
	TierWeights    domain.TierWeights    `toml:"tier_weights"`
	TierBoosts     domain.TierBoosts     `toml:"tier_boosts"`
	Keywords       domain.Keywords       `toml:"keywords"`
}

type historyDocument struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path,omitempty"`
	Retain  int    `toml:"retain"`
}

type logDocument struct {
	Level string `toml:"level"`
}

type boostDocument struct {
	Source string `toml:"source"`
}

// Marshal renders settings as a config file that Load accepts.
func Marshal(s Settings) ([]byte, error) {
	e := s.Engine
	doc := document{
		Engine: engineDocument{
			MaxFoci:                e.MaxFoci,
			AttentionSpan:          formatDuration(e.AttentionSpan),
			MinFocusIntensity:      e.MinFocusIntensity,
			ChangeThreshold:        e.ChangeThreshold,
			TotalResources:         e.TotalResources,
			BaseProcessingTime:     formatDuration(e.BaseProcessingTime),
			HistoryCapacity:        e.HistoryCapacity,
			NoveltyHistoryCapacity: e.NoveltyHistoryCapacity,
			UrgencyLookahead:       formatDuration(e.UrgencyLookahead),
			MinCognitiveLoad:       e.MinCognitiveLoad,
			MaintenanceInterval:    formatDuration(e.MaintenanceInterval),
			Strict:                 e.Strict,
			Weights:                e.Weights,
			TierThresholds:         e.TierThresholds,
			TierWeights:            e.TierWeights,
			TierBoosts:             e.TierBoosts,
			Keywords:               e.Keywords,
		},
		History: historyDocument{
			Backend: s.History.Backend,
			Path:    s.History.Path,
			Retain:  s.History.Retain,
		},
		Log:   logDocument{Level: s.Log.Level},
		Boost: boostDocument{Source: s.Boost.Source},
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}

func formatDuration(d time.Duration) string {
	return d.String()
}
