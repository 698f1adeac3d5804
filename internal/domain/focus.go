package domain

import "time"

type FocusEntry struct {
	Key        string     `json:"key"`
	Item       ScoredItem `json:"item"`
	Intensity  float64    `json:"intensity"`
	StartTime  time.Time  `json:"start_time"`
	LastUpdate time.Time  `json:"last_update"`
}

type FocusChangeKind string

const (
	FocusAdded      FocusChangeKind = "focus_added"
	IntensityChange FocusChangeKind = "intensity_change"
	FocusRemoved    FocusChangeKind = "focus_removed"
)

type RemovalReason string

const (
	RemovalDecayed  RemovalReason = "decayed"
	RemovalCapacity RemovalReason = "capacity"
)

type FocusChange struct {
	Kind     FocusChangeKind `json:"kind"`
	Key      string          `json:"key"`
	Previous float64         `json:"previous"`
	Current  float64         `json:"current"`
	Reason   RemovalReason   `json:"reason,omitempty"`
}

func (c FocusChange) Delta() float64 {
	return c.Current - c.Previous
}

type FocusUpdate struct {
	Active  []FocusEntry  `json:"active"`
	Changes []FocusChange `json:"changes"`
}

func (u FocusUpdate) IntensitySum() float64 {
	total := 0.0
	for _, entry := range u.Active {
		total += entry.Intensity
	}
	return total
}
