package domain

import "time"

type AllocationRecord struct {
	Key                 string        `json:"key"`
	Tier                Tier          `json:"tier"`
	Intensity           float64       `json:"intensity"`
	ResourceShare       float64       `json:"resource_share"`
	ProcessingTime      time.Duration `json:"processing_time"`
	EstimatedCompletion time.Time     `json:"estimated_completion"`
}

type AllocationResult struct {
	Records                     []AllocationRecord `json:"records"`
	TotalResources              float64            `json:"total_resources"`
	UtilizationRate             float64            `json:"utilization_rate"`
	PriorityWeightedUtilization float64            `json:"priority_weighted_utilization"`
	Efficiency                  float64            `json:"efficiency"`
}

func (r AllocationResult) AllocatedTotal() float64 {
	total := 0.0
	for _, record := range r.Records {
		total += record.ResourceShare
	}
	return total
}
