package application

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func focusEntry(key string, intensity float64, tier domain.Tier, complexity float64) domain.FocusEntry {
	item := scoredItem(key, intensity, tier)
	item.Factors.Complexity = complexity
	return domain.FocusEntry{Key: key, Item: item, Intensity: intensity, StartTime: baseTime, LastUpdate: baseTime}
}

func TestAllocateEmptyFoci(t *testing.T) {
	planner := NewAllocationPlanner(domain.DefaultConfig())

	result := planner.Allocate(nil, 100, baseTime)

	assert.Empty(t, result.Records)
	assert.Zero(t, result.UtilizationRate)
	assert.Zero(t, result.Efficiency)
}

func TestAllocateZeroIntensity(t *testing.T) {
	planner := NewAllocationPlanner(domain.DefaultConfig())

	result := planner.Allocate([]domain.FocusEntry{focusEntry("a", 0, domain.TierLow, 0)}, 100, baseTime)

	assert.Empty(t, result.Records)
	assert.Zero(t, result.Efficiency)
}

func TestAllocateIsProportionalToIntensity(t *testing.T) {
	planner := NewAllocationPlanner(domain.DefaultConfig())

	result := planner.Allocate([]domain.FocusEntry{
		focusEntry("a", 0.6, domain.TierHigh, 0),
		focusEntry("b", 0.2, domain.TierLow, 0),
	}, 100, baseTime)

	require.Len(t, result.Records, 2)
	assert.InDelta(t, 75, result.Records[0].ResourceShare, 1e-9)
	assert.InDelta(t, 25, result.Records[1].ResourceShare, 1e-9)
	assert.InDelta(t, 1, result.UtilizationRate, 1e-9)
}

func TestAllocateConservesBudget(t *testing.T) {
	planner := NewAllocationPlanner(domain.DefaultConfig())
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(12)
		foci := make([]domain.FocusEntry, 0, n)
		for i := 0; i < n; i++ {
			tier := domain.Tiers[rng.Intn(len(domain.Tiers))]
			foci = append(foci, focusEntry(fmt.Sprintf("f%d", i), 0.1+rng.Float64()*0.9, tier, rng.Float64()))
		}
		total := 1 + rng.Float64()*1000

		result := planner.Allocate(foci, total, baseTime)

		require.Len(t, result.Records, n)
		assert.InDelta(t, total, result.AllocatedTotal(), total*1e-9)
		assert.GreaterOrEqual(t, result.Efficiency, 0.0)
		assert.LessOrEqual(t, result.Efficiency, 1.0)
	}
}

func TestAllocateProcessingTime(t *testing.T) {
	planner := NewAllocationPlanner(domain.DefaultConfig())

	t.Run("equal shares use the base time scaled by complexity", func(t *testing.T) {
		result := planner.Allocate([]domain.FocusEntry{
			focusEntry("a", 0.5, domain.TierMedium, 0.5),
			focusEntry("b", 0.5, domain.TierMedium, 0),
		}, 10, baseTime)

		assert.Equal(t, 1500*time.Millisecond, result.Records[0].ProcessingTime)
		assert.Equal(t, baseTime.Add(1500*time.Millisecond), result.Records[0].EstimatedCompletion)
		assert.Equal(t, time.Second, result.Records[1].ProcessingTime)
	})

	t.Run("resource factor is clamped", func(t *testing.T) {
		result := planner.Allocate([]domain.FocusEntry{
			focusEntry("big", 1, domain.TierCritical, 0),
			focusEntry("tiny-1", 0.1, domain.TierLow, 0),
			focusEntry("tiny-2", 0.1, domain.TierLow, 0),
			focusEntry("tiny-3", 0.1, domain.TierLow, 0),
		}, 100, baseTime)

		assert.Equal(t, 500*time.Millisecond, result.Records[0].ProcessingTime)
		assert.Equal(t, 2*time.Second, result.Records[1].ProcessingTime)
	})
}

func TestAllocateEfficiency(t *testing.T) {
	planner := NewAllocationPlanner(domain.DefaultConfig())

	tests := []struct {
		name string
		tier domain.Tier
		want float64
	}{
		{name: "critical", tier: domain.TierCritical, want: 1.0},
		{name: "high", tier: domain.TierHigh, want: 0.6*0.75 + 0.4},
		{name: "low", tier: domain.TierLow, want: 0.6*0.25 + 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := planner.Allocate([]domain.FocusEntry{focusEntry("a", 0.5, tt.tier, 0)}, 100, baseTime)
			assert.InDelta(t, tt.want, result.Efficiency, 1e-9)
		})
	}
}
