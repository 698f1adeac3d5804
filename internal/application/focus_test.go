package application

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFocusUpdateRespectsCapacity(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MaxFoci = 5
	tracker := NewFocusTracker(cfg, nil)

	scored := make([]domain.ScoredItem, 0, 15)
	for i := 0; i < 15; i++ {
		scored = append(scored, scoredItem(fmt.Sprintf("item-%02d", i), 0.95-float64(i)*0.05, domain.TierMedium))
	}

	update := tracker.Update(scored, baseTime)

	require.Len(t, update.Active, 5)
	keys := make([]string, 0, len(update.Active))
	for _, entry := range update.Active {
		keys = append(keys, entry.Key)
	}
	assert.ElementsMatch(t, []string{"item-00", "item-01", "item-02", "item-03", "item-04"}, keys)
	assert.Len(t, update.Changes, 5)
	for _, change := range update.Changes {
		assert.Equal(t, domain.FocusAdded, change.Kind)
	}
}

func TestFocusCapacityEvictsWeakestExistingEntries(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MaxFoci = 2
	tracker := NewFocusTracker(cfg, nil)

	tracker.Update([]domain.ScoredItem{
		scoredItem("a", 0.5, domain.TierMedium),
		scoredItem("b", 0.45, domain.TierMedium),
	}, baseTime)

	update := tracker.Update([]domain.ScoredItem{
		scoredItem("c", 0.9, domain.TierCritical),
		scoredItem("d", 0.85, domain.TierCritical),
	}, baseTime)

	require.Len(t, update.Active, 2)
	assert.ElementsMatch(t, []string{"c", "d"}, []string{update.Active[0].Key, update.Active[1].Key})

	removed := map[string]domain.RemovalReason{}
	for _, change := range update.Changes {
		if change.Kind == domain.FocusRemoved {
			removed[change.Key] = change.Reason
		}
	}
	assert.Equal(t, map[string]domain.RemovalReason{"a": domain.RemovalCapacity, "b": domain.RemovalCapacity}, removed)
}

func TestCandidateIntensity(t *testing.T) {
	tracker := NewFocusTracker(domain.DefaultConfig(), nil)

	tests := []struct {
		name string
		item domain.ScoredItem
		want float64
	}{
		{name: "critical is boosted and clamped to one", item: scoredItem("c", 0.9, domain.TierCritical), want: 1},
		{name: "high uses the midpoint boost", item: scoredItem("h", 0.65, domain.TierHigh), want: 0.65 * 0.8 * 1.45},
		{name: "medium is unboosted", item: scoredItem("m", 0.5, domain.TierMedium), want: 0.3},
		{name: "low is raised to the floor", item: scoredItem("l", 0.1, domain.TierLow), want: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tracker.CandidateIntensity(tt.item), 1e-9)
		})
	}
}

func TestCandidateIntensityFollowsNumericSource(t *testing.T) {
	item := scoredItem("h", 0.7, domain.TierHigh)

	low := NewFocusTracker(domain.DefaultConfig(), ports.MapSource{Values: map[string]float64{"tier_boost.high": 0}})
	high := NewFocusTracker(domain.DefaultConfig(), ports.MapSource{Values: map[string]float64{"tier_boost.high": 1}})

	assert.InDelta(t, 0.7*0.8*1.1, low.CandidateIntensity(item), 1e-9)
	assert.InDelta(t, 1.0, high.CandidateIntensity(item), 1e-9)
}

func TestFocusDecayIsStrictlyMonotonic(t *testing.T) {
	tracker := NewFocusTracker(domain.DefaultConfig(), nil)
	tracker.Update([]domain.ScoredItem{scoredItem("a", 0.9, domain.TierCritical)}, baseTime)

	previous := 1.0
	for step := 1; step <= 5; step++ {
		update := tracker.Update(nil, baseTime.Add(time.Duration(step)*5*time.Second))
		require.Len(t, update.Active, 1)
		current := update.Active[0].Intensity
		assert.Less(t, current, previous)
		assert.InDelta(t, math.Exp(-float64(step)*5/30), current, 1e-9)
		previous = current
	}
}

func TestFocusEvictsDecayedEntries(t *testing.T) {
	tracker := NewFocusTracker(domain.DefaultConfig(), nil)
	tracker.Update([]domain.ScoredItem{scoredItem("a", 0.9, domain.TierCritical)}, baseTime)

	update := tracker.Update(nil, baseTime.Add(70*time.Second))

	assert.Empty(t, update.Active)
	require.Len(t, update.Changes, 1)
	assert.Equal(t, domain.FocusRemoved, update.Changes[0].Kind)
	assert.Equal(t, domain.RemovalDecayed, update.Changes[0].Reason)
	assert.Equal(t, 0, tracker.Len())
}

func TestFocusRefreshNeverDecreasesIntensity(t *testing.T) {
	tracker := NewFocusTracker(domain.DefaultConfig(), nil)

	first := tracker.Update([]domain.ScoredItem{scoredItem("a", 0.7, domain.TierHigh)}, baseTime)
	second := tracker.Update([]domain.ScoredItem{scoredItem("a", 0.45, domain.TierMedium)}, baseTime)

	require.Len(t, first.Active, 1)
	require.Len(t, second.Active, 1)
	assert.GreaterOrEqual(t, second.Active[0].Intensity, first.Active[0].Intensity)
	assert.Empty(t, second.Changes)
	assert.Equal(t, domain.TierMedium, second.Active[0].Item.Tier)
}

func TestFocusRefreshAfterDecayEmitsIntensityChange(t *testing.T) {
	tracker := NewFocusTracker(domain.DefaultConfig(), nil)
	tracker.Update([]domain.ScoredItem{scoredItem("a", 0.9, domain.TierCritical)}, baseTime)

	later := baseTime.Add(20 * time.Second)
	update := tracker.Update([]domain.ScoredItem{scoredItem("a", 0.9, domain.TierCritical)}, later)

	require.Len(t, update.Changes, 1)
	change := update.Changes[0]
	assert.Equal(t, domain.IntensityChange, change.Kind)
	assert.InDelta(t, math.Exp(-20.0/30), change.Previous, 1e-9)
	assert.InDelta(t, 1.0, change.Current, 1e-9)
	assert.Equal(t, baseTime, update.Active[0].StartTime)
	assert.Equal(t, later, update.Active[0].LastUpdate)
}

func TestFocusIntensitiesStayWithinBounds(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.MaxFoci = 3
	tracker := NewFocusTracker(cfg, nil)

	now := baseTime
	for round := 0; round < 20; round++ {
		scored := []domain.ScoredItem{
			scoredItem(fmt.Sprintf("r%d-a", round%4), 0.95, domain.TierCritical),
			scoredItem(fmt.Sprintf("r%d-b", round%5), 0.62, domain.TierHigh),
			scoredItem(fmt.Sprintf("r%d-c", round%3), 0.2, domain.TierLow),
		}
		update := tracker.Update(scored, now)

		assert.LessOrEqual(t, len(update.Active), cfg.MaxFoci)
		for _, entry := range update.Active {
			assert.GreaterOrEqual(t, entry.Intensity, cfg.MinFocusIntensity)
			assert.LessOrEqual(t, entry.Intensity, 1.0)
		}
		now = now.Add(7 * time.Second)
	}
}

func TestFocusRollbackRestoresCheckpoint(t *testing.T) {
	tracker := NewFocusTracker(domain.DefaultConfig(), nil)
	tracker.Update([]domain.ScoredItem{scoredItem("kept", 0.7, domain.TierMedium)}, baseTime)
	before := tracker.Snapshot()

	saved := tracker.checkpoint()
	tracker.Update([]domain.ScoredItem{scoredItem("extra", 0.9, domain.TierMedium)}, baseTime.Add(10*time.Second))
	require.Equal(t, 2, tracker.Len())

	tracker.rollback(saved)

	assert.Equal(t, before, tracker.Snapshot())
	update := tracker.Update(nil, baseTime)
	assert.Empty(t, update.Changes)
}
