package domain

import "time"

type Factors struct {
	Urgency    float64 `json:"urgency"`
	Complexity float64 `json:"complexity"`
	Novelty    float64 `json:"novelty"`
	Relevance  float64 `json:"relevance"`
}

type Weights struct {
	Urgency    float64 `mapstructure:"urgency" toml:"urgency"`
	Complexity float64 `mapstructure:"complexity" toml:"complexity"`
	Novelty    float64 `mapstructure:"novelty" toml:"novelty"`
	Relevance  float64 `mapstructure:"relevance" toml:"relevance"`
}

func (w Weights) Sum() float64 {
	return w.Urgency + w.Complexity + w.Novelty + w.Relevance
}

// Combine returns the weighted score of f.
func (w Weights) Combine(f Factors) float64 {
	return f.Urgency*w.Urgency + f.Complexity*w.Complexity + f.Novelty*w.Novelty + f.Relevance*w.Relevance
}

type ScoredItem struct {
	Item             WorkItem `json:"item"`
	Key              string   `json:"key"`
	Factors          Factors  `json:"factors"`
	Score            float64  `json:"score"`
	Tier             Tier     `json:"tier"`
	ProcessingWeight float64  `json:"processing_weight"`
}

type AnalysisStatus string

const (
	AnalysisScored  AnalysisStatus = "scored"
	AnalysisNoItems AnalysisStatus = "no_items"
)

type PriorityAnalysis struct {
	Status     AnalysisStatus `json:"status"`
	Items      []ScoredItem   `json:"items"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
}
