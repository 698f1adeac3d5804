package domain

import "time"

type CycleStatus string

const (
	CycleCompleted CycleStatus = "completed"
	CycleEmpty     CycleStatus = "empty"
	CycleError     CycleStatus = "error"
)

type CycleMetrics struct {
	ItemCount      int     `json:"item_count"`
	ActiveCount    int     `json:"active_count"`
	ChangeCount    int     `json:"change_count"`
	QueueLength    int     `json:"queue_length"`
	AverageScore   float64 `json:"average_score"`
	CriticalCount  int     `json:"critical_count"`
	AllocatedTotal float64 `json:"allocated_total"`
	HistoryLength  int     `json:"history_length"`
}

type CycleResult struct {
	CycleID          string           `json:"cycle_id,omitempty"`
	Status           CycleStatus      `json:"status"`
	StartedAt        time.Time        `json:"started_at"`
	ProcessingTime   time.Duration    `json:"processing_time"`
	PriorityAnalysis PriorityAnalysis `json:"priority_analysis"`
	FocusManagement  FocusUpdate      `json:"focus_management"`
	Allocation       AllocationResult `json:"allocation"`
	CognitiveLoad    float64          `json:"cognitive_load"`
	FocusIntensity   float64          `json:"focus_intensity"`
	Metrics          CycleMetrics     `json:"metrics"`
	Error            string           `json:"error,omitempty"`
}

type HistoryEntry struct {
	CycleID              string    `json:"cycle_id"`
	Timestamp            time.Time `json:"timestamp"`
	CognitiveLoad        float64   `json:"cognitive_load"`
	FocusIntensitySum    float64   `json:"focus_intensity_sum"`
	ActiveCount          int       `json:"active_count"`
	AllocationEfficiency float64   `json:"allocation_efficiency"`
}

// HistoryEntryFor summarizes a completed cycle.
func HistoryEntryFor(result CycleResult) HistoryEntry {
	return HistoryEntry{
		CycleID:              result.CycleID,
		Timestamp:            result.StartedAt,
		CognitiveLoad:        result.CognitiveLoad,
		FocusIntensitySum:    result.FocusIntensity,
		ActiveCount:          len(result.FocusManagement.Active),
		AllocationEfficiency: result.Allocation.Efficiency,
	}
}

type MaintenanceTick struct {
	At            time.Time `json:"at"`
	QueueLength   int       `json:"queue_length"`
	CognitiveLoad float64   `json:"cognitive_load"`
	Completed     []string  `json:"completed,omitempty"`
}

type Metrics struct {
	Cycles               int     `json:"cycles"`
	EmptyCycles          int     `json:"empty_cycles"`
	ErrorCycles          int     `json:"error_cycles"`
	CompletedAllocations int     `json:"completed_allocations"`
	QueueLength          int     `json:"queue_length"`
	ActiveFoci           int     `json:"active_foci"`
	AverageLoad          float64 `json:"average_load"`
	AverageEfficiency    float64 `json:"average_efficiency"`
}
