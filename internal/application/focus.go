package application

import (
	"math"
	"sort"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
)

type trackedFocus struct {
	entry     domain.FocusEntry
	decayedAt time.Time
}

// FocusTracker keeps the bounded, decaying set of active foci keyed by item identity.
// It is owned by an Orchestrator and is not safe for concurrent use.
type FocusTracker struct {
	cfg    domain.Config
	source ports.NumericSource
	foci   map[string]*trackedFocus
}

func NewFocusTracker(cfg domain.Config, source ports.NumericSource) *FocusTracker {
	if source == nil {
		source = ports.ConstantSource(0.5)
	}

	return &FocusTracker{
		cfg:    cfg,
		source: source,
		foci:   make(map[string]*trackedFocus),
	}
}

func (t *FocusTracker) Update(scored []domain.ScoredItem, now time.Time) domain.FocusUpdate {
	changes := t.decay(now)

	limit := t.cfg.MaxFoci
	if limit > len(scored) {
		limit = len(scored)
	}
	for _, item := range scored[:limit] {
		if change, ok := t.merge(item, now); ok {
			changes = append(changes, change)
		}
	}

	changes = append(changes, t.enforceCapacity()...)

	return domain.FocusUpdate{Active: t.Snapshot(), Changes: changes}
}

// CandidateIntensity is the intensity an item would be admitted with.
func (t *FocusTracker) CandidateIntensity(item domain.ScoredItem) float64 {
	boost := 1.0
	if r, ok := t.cfg.TierBoosts.For(item.Tier); ok {
		boost = r.At(t.source.Sample("tier_boost." + string(item.Tier)))
	}

	return domain.Clamp(item.Score*item.ProcessingWeight*boost, t.cfg.MinFocusIntensity, 1)
}

func (t *FocusTracker) decay(now time.Time) []domain.FocusChange {
	var changes []domain.FocusChange
	span := t.cfg.AttentionSpan.Seconds()

	for key, tracked := range t.foci {
		elapsed := now.Sub(tracked.decayedAt).Seconds()
		if elapsed <= 0 {
			continue
		}

		previous := tracked.entry.Intensity
		tracked.entry.Intensity = previous * math.Exp(-elapsed/span)
		tracked.decayedAt = now

		if tracked.entry.Intensity < t.cfg.MinFocusIntensity {
			delete(t.foci, key)
			changes = append(changes, domain.FocusChange{
				Kind:     domain.FocusRemoved,
				Key:      key,
				Previous: previous,
				Current:  tracked.entry.Intensity,
				Reason:   domain.RemovalDecayed,
			})
		}
	}

	sortChanges(changes)
	return changes
}

func (t *FocusTracker) merge(item domain.ScoredItem, now time.Time) (domain.FocusChange, bool) {
	candidate := t.CandidateIntensity(item)

	tracked, ok := t.foci[item.Key]
	if !ok {
		t.foci[item.Key] = &trackedFocus{
			entry: domain.FocusEntry{
				Key:        item.Key,
				Item:       item,
				Intensity:  candidate,
				StartTime:  now,
				LastUpdate: now,
			},
			decayedAt: now,
		}
		change := domain.FocusChange{Kind: domain.FocusAdded, Key: item.Key, Current: candidate}
		return change, math.Abs(change.Delta()) > t.cfg.ChangeThreshold
	}

	previous := tracked.entry.Intensity
	tracked.entry.Intensity = domain.Clamp(math.Max(previous, candidate), t.cfg.MinFocusIntensity, 1)
	tracked.entry.Item = item
	tracked.entry.LastUpdate = now
	tracked.decayedAt = now

	change := domain.FocusChange{
		Kind:     domain.IntensityChange,
		Key:      item.Key,
		Previous: previous,
		Current:  tracked.entry.Intensity,
	}
	return change, math.Abs(change.Delta()) > t.cfg.ChangeThreshold
}

func (t *FocusTracker) enforceCapacity() []domain.FocusChange {
	if len(t.foci) <= t.cfg.MaxFoci {
		return nil
	}

	entries := t.Snapshot()
	var changes []domain.FocusChange
	for _, entry := range entries[t.cfg.MaxFoci:] {
		delete(t.foci, entry.Key)
		changes = append(changes, domain.FocusChange{
			Kind:     domain.FocusRemoved,
			Key:      entry.Key,
			Previous: entry.Intensity,
			Current:  entry.Intensity,
			Reason:   domain.RemovalCapacity,
		})
	}
	return changes
}

// Snapshot returns the active foci, strongest first.
func (t *FocusTracker) Snapshot() []domain.FocusEntry {
	entries := make([]domain.FocusEntry, 0, len(t.foci))
	for _, tracked := range t.foci {
		entries = append(entries, tracked.entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Intensity != entries[j].Intensity {
			return entries[i].Intensity > entries[j].Intensity
		}
		if !entries[i].LastUpdate.Equal(entries[j].LastUpdate) {
			return entries[i].LastUpdate.After(entries[j].LastUpdate)
		}
		return entries[i].Key < entries[j].Key
	})

	return entries
}

func (t *FocusTracker) Len() int {
	return len(t.foci)
}

// checkpoint copies the tracked foci so a failed cycle can be undone.
func (t *FocusTracker) checkpoint() map[string]trackedFocus {
	saved := make(map[string]trackedFocus, len(t.foci))
	for key, tracked := range t.foci {
		saved[key] = *tracked
	}
	return saved
}

func (t *FocusTracker) rollback(saved map[string]trackedFocus) {
	t.foci = make(map[string]*trackedFocus, len(saved))
	for key, tracked := range saved {
		t.foci[key] = &tracked
	}
}

func sortChanges(changes []domain.FocusChange) {
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Key < changes[j].Key
	})
}
