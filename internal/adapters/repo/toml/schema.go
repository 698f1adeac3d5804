package toml

import (
	"fmt"

	"github.com/bnema/focus-budget-cli/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Cycles  []cycleSchema `toml:"cycles"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("%w: unsupported history schema version %d (current %d)", domain.ErrHistoryUnavailable, s.Version, currentSchemaVersion)
	}

	return nil
}

type cycleSchema struct {
	ID                   string  `toml:"id"`
	Timestamp            string  `toml:"timestamp"`
	CognitiveLoad        float64 `toml:"cognitive_load"`
	FocusIntensitySum    float64 `toml:"focus_intensity_sum"`
	ActiveCount          int     `toml:"active_count"`
	AllocationEfficiency float64 `toml:"allocation_efficiency"`
}
