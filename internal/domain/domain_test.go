package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForPartitionsUnitInterval(t *testing.T) {
	thresholds := DefaultConfig().TierThresholds
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5_000; i++ {
		score := rng.Float64()
		tier := thresholds.TierFor(score)

		matches := 0
		if score >= thresholds.Critical {
			matches++
			assert.Equal(t, TierCritical, tier)
		}
		if score >= thresholds.High && score < thresholds.Critical {
			matches++
			assert.Equal(t, TierHigh, tier)
		}
		if score >= thresholds.Medium && score < thresholds.High {
			matches++
			assert.Equal(t, TierMedium, tier)
		}
		if score < thresholds.Medium {
			matches++
			assert.Equal(t, TierLow, tier)
		}
		require.Equal(t, 1, matches, "score %.4f", score)
	}
}

func TestTierForBoundaries(t *testing.T) {
	thresholds := DefaultConfig().TierThresholds

	tests := []struct {
		name  string
		score float64
		want  Tier
	}{
		{name: "one", score: 1, want: TierCritical},
		{name: "critical threshold is inclusive", score: 0.8, want: TierCritical},
		{name: "just below critical", score: 0.7999, want: TierHigh},
		{name: "high threshold", score: 0.6, want: TierHigh},
		{name: "medium threshold", score: 0.4, want: TierMedium},
		{name: "zero", score: 0, want: TierLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, thresholds.TierFor(tt.score))
		})
	}
}

func TestTierRankAndParse(t *testing.T) {
	assert.Equal(t, 4, TierCritical.Rank())
	assert.Equal(t, 1, TierLow.Rank())
	assert.Equal(t, 0, Tier("other").Rank())

	tier, err := ParseTier("medium")
	require.NoError(t, err)
	assert.Equal(t, TierMedium, tier)

	_, err = ParseTier("urgent")
	require.Error(t, err)
}

func TestBoostRangeAtClampsPosition(t *testing.T) {
	r := BoostRange{Min: 1.5, Max: 2.5}

	assert.InDelta(t, 1.5, r.At(-1), 1e-9)
	assert.InDelta(t, 2.0, r.At(0.5), 1e-9)
	assert.InDelta(t, 2.5, r.At(3), 1e-9)
}

func TestWorkItemKeyIsStableWithoutID(t *testing.T) {
	a := WorkItem{Content: "rotate keys", Keywords: []string{"Security", "ops"}, Domain: "infra"}
	b := WorkItem{Content: "rotate keys", Keywords: []string{"ops", "security"}, Domain: "INFRA"}
	c := WorkItem{Content: "rotate certs", Domain: "infra"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, "task-1", WorkItem{ID: " task-1 ", Content: "x"}.Key())
}

func TestWorkItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    WorkItem
		wantErr bool
	}{
		{name: "content only", item: WorkItem{Content: "hello"}},
		{name: "empty item", item: WorkItem{}, wantErr: true},
		{name: "deadline before epoch", item: WorkItem{Content: "x", Deadline: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)}, wantErr: true},
		{name: "nested payload", item: WorkItem{Content: "x", Payload: map[string]any{"a": map[string]any{"b": []any{1, "two", 3.5}}}}},
		{name: "unsupported payload", item: WorkItem{Content: "x", Payload: map[string]any{"fn": func() {}}}, wantErr: true},
		{name: "non finite payload number", item: WorkItem{Content: "x", Payload: map[string]any{"cost": map[string]any{"n": nan()}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateBatchRejectsDuplicateKeys(t *testing.T) {
	err := ValidateBatch([]WorkItem{{ID: "a", Content: "one"}, {ID: "a", Content: "two"}})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "duplicate of item 0")
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "weights not summing to one", mutate: func(c *Config) { c.Weights.Urgency = 0.5 }},
		{name: "negative weight", mutate: func(c *Config) { c.Weights.Urgency = -0.1; c.Weights.Relevance = 0.65 }},
		{name: "thresholds not decreasing", mutate: func(c *Config) { c.TierThresholds.High = 0.85 }},
		{name: "threshold above one", mutate: func(c *Config) { c.TierThresholds.Critical = 1.2 }},
		{name: "zero tier weight", mutate: func(c *Config) { c.TierWeights.Low = 0 }},
		{name: "inverted boost", mutate: func(c *Config) { c.TierBoosts.High = BoostRange{Min: 2, Max: 1} }},
		{name: "zero max foci", mutate: func(c *Config) { c.MaxFoci = 0 }},
		{name: "zero attention span", mutate: func(c *Config) { c.AttentionSpan = 0 }},
		{name: "min intensity of one", mutate: func(c *Config) { c.MinFocusIntensity = 1 }},
		{name: "no resources", mutate: func(c *Config) { c.TotalResources = 0 }},
		{name: "zero history", mutate: func(c *Config) { c.HistoryCapacity = 0 }},
		{name: "cognitive floor above one", mutate: func(c *Config) { c.MinCognitiveLoad = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrConfiguration)
		})
	}
}

func TestProcessingErrorMatchesSentinelAndCause(t *testing.T) {
	cause := ErrInvalidInput
	err := error(&ProcessingError{CycleID: "c-1", Stage: StageFocus, Err: cause})

	assert.ErrorIs(t, err, ErrProcessing)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cycle c-1: focus: invalid input", err.Error())
}

func TestHistoryEntryFor(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entry := HistoryEntryFor(CycleResult{
		CycleID:         "c-9",
		StartedAt:       at,
		CognitiveLoad:   0.4,
		FocusIntensity:  1.7,
		FocusManagement: FocusUpdate{Active: []FocusEntry{{Key: "a"}, {Key: "b"}}},
		Allocation:      AllocationResult{Efficiency: 0.9},
	})

	assert.Equal(t, HistoryEntry{
		CycleID:              "c-9",
		Timestamp:            at,
		CognitiveLoad:        0.4,
		FocusIntensitySum:    1.7,
		ActiveCount:          2,
		AllocationEfficiency: 0.9,
	}, entry)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
