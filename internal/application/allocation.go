package application

import (
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
)

const (
	minResourceFactor = 0.5
	maxResourceFactor = 2.0
	priorityShareBias = 0.6
	utilizationBias   = 0.4
)

// AllocationPlanner splits a resource budget across active foci in proportion to intensity.
type AllocationPlanner struct {
	baseProcessingTime time.Duration
}

func NewAllocationPlanner(cfg domain.Config) *AllocationPlanner {
	return &AllocationPlanner{baseProcessingTime: cfg.BaseProcessingTime}
}

func (p *AllocationPlanner) Allocate(foci []domain.FocusEntry, totalResources float64, now time.Time) domain.AllocationResult {
	empty := domain.AllocationResult{Records: []domain.AllocationRecord{}, TotalResources: totalResources}
	if len(foci) == 0 || totalResources <= 0 {
		return empty
	}

	totalIntensity := 0.0
	for _, entry := range foci {
		totalIntensity += entry.Intensity
	}
	if totalIntensity <= 0 {
		return empty
	}

	baselineShare := totalResources / float64(len(foci))
	records := make([]domain.AllocationRecord, 0, len(foci))
	allocated := 0.0
	weighted := 0.0

	for _, entry := range foci {
		share := entry.Intensity / totalIntensity * totalResources
		factor := domain.Clamp(share/baselineShare, minResourceFactor, maxResourceFactor)
		processing := time.Duration(float64(p.baseProcessingTime) * (1 + entry.Item.Factors.Complexity) / factor)

		records = append(records, domain.AllocationRecord{
			Key:                 entry.Key,
			Tier:                entry.Item.Tier,
			Intensity:           entry.Intensity,
			ResourceShare:       share,
			ProcessingTime:      processing,
			EstimatedCompletion: now.Add(processing),
		})

		allocated += share
		weighted += share / totalResources * float64(entry.Item.Tier.Rank())
	}

	utilization := domain.Clamp(allocated/totalResources, 0, 1)
	priorityWeighted := domain.Clamp(weighted/float64(domain.TierCritical.Rank()), 0, 1)

	return domain.AllocationResult{
		Records:                     records,
		TotalResources:              totalResources,
		UtilizationRate:             utilization,
		PriorityWeightedUtilization: priorityWeighted,
		Efficiency:                  domain.Clamp(priorityShareBias*priorityWeighted+utilizationBias*utilization, 0, 1),
	}
}
