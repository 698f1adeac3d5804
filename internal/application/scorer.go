package application

import (
	"sort"
	"strings"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
)

const (
	complexityBaseline     = 0.3
	complexityFloor        = 0.1
	sentenceBonusCap       = 0.2
	sentenceWordsPerBonus  = 25.0
	technicalBonusCap      = 0.3
	technicalDensityFactor = 1.5
	payloadBonusCap        = 0.2
	payloadBonusPerField   = 0.02
	urgencyKeywordBonus    = 0.2
	urgencyKeywordCap      = 0.4
	noveltyBaseline        = 0.9
	noveltyPenaltyPerItem  = 0.2
	noveltyKeywordBonus    = 0.1
	noveltyKeywordCap      = 0.2
	similarityThreshold    = 0.5
	domainSimilarityBonus  = 0.3
	relevanceBaseline      = 0.5
	relevanceGoalWeight    = 0.4
	relevanceDomainBonus   = 0.3
	relevanceUnconstrained = 1.0
)

type itemSummary struct {
	terms  map[string]struct{}
	domain string
}

type batchRecord struct {
	at    time.Time
	items []itemSummary
}

// PriorityScorer ranks work items by weighted urgency, complexity, novelty and relevance.
// It keeps a bounded record of past batches for novelty and is not safe for concurrent use.
type PriorityScorer struct {
	cfg     domain.Config
	history *ring[batchRecord]
}

func NewPriorityScorer(cfg domain.Config) *PriorityScorer {
	return &PriorityScorer{
		cfg:     cfg,
		history: newRing[batchRecord](cfg.NoveltyHistoryCapacity),
	}
}

func (s *PriorityScorer) Score(items []domain.WorkItem, cctx domain.CycleContext, now time.Time) domain.PriorityAnalysis {
	if len(items) == 0 {
		return domain.PriorityAnalysis{Status: domain.AnalysisNoItems, Items: []domain.ScoredItem{}, AnalyzedAt: now}
	}

	scored := make([]domain.ScoredItem, 0, len(items))
	summaries := make([]itemSummary, 0, len(items))
	for _, item := range items {
		summary := itemSummary{terms: terms(item.Keywords, item.Content), domain: normalizeDomain(item.Domain)}
		factors := s.factors(item, summary, cctx, now)
		score := domain.Clamp(s.cfg.Weights.Combine(factors), 0, 1)
		tier := s.cfg.TierThresholds.TierFor(score)

		scored = append(scored, domain.ScoredItem{
			Item:             item,
			Key:              item.Key(),
			Factors:          factors,
			Score:            score,
			Tier:             tier,
			ProcessingWeight: s.cfg.TierWeights.For(tier),
		})
		summaries = append(summaries, summary)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score == scored[j].Score {
			return scored[i].Key < scored[j].Key
		}
		return scored[i].Score > scored[j].Score
	})

	s.history.Push(batchRecord{at: now, items: summaries})

	return domain.PriorityAnalysis{Status: domain.AnalysisScored, Items: scored, AnalyzedAt: now}
}

// checkpoint captures the novelty history so a failed cycle can be undone.
func (s *PriorityScorer) checkpoint() *ring[batchRecord] {
	return s.history.clone()
}

func (s *PriorityScorer) rollback(saved *ring[batchRecord]) {
	s.history = saved
}

// Factors scores a single item against the current novelty history without recording it.
func (s *PriorityScorer) Factors(item domain.WorkItem, cctx domain.CycleContext, now time.Time) domain.Factors {
	summary := itemSummary{terms: terms(item.Keywords, item.Content), domain: normalizeDomain(item.Domain)}
	return s.factors(item, summary, cctx, now)
}

func (s *PriorityScorer) factors(item domain.WorkItem, summary itemSummary, cctx domain.CycleContext, now time.Time) domain.Factors {
	return domain.Factors{
		Urgency:    s.urgency(item, summary, now),
		Complexity: s.complexity(item),
		Novelty:    s.novelty(summary),
		Relevance:  relevance(summary, cctx),
	}
}

func (s *PriorityScorer) urgency(item domain.WorkItem, summary itemSummary, now time.Time) float64 {
	score := 0.0
	if item.HasDeadline() {
		remaining := item.Deadline.Sub(now)
		switch {
		case remaining <= 0:
			score = 1
		case remaining >= s.cfg.UrgencyLookahead:
			score = 0
		default:
			score = 1 - float64(remaining)/float64(s.cfg.UrgencyLookahead)
		}
	}

	bonus := float64(countMatches(summary.terms, s.cfg.Keywords.Urgency)) * urgencyKeywordBonus
	if bonus > urgencyKeywordCap {
		bonus = urgencyKeywordCap
	}

	return domain.Clamp(score+bonus, 0, 1)
}

func (s *PriorityScorer) complexity(item domain.WorkItem) float64 {
	score := complexityBaseline

	if parts := sentences(item.Content); len(parts) > 0 {
		total := 0
		for _, sentence := range parts {
			total += len(words(sentence))
		}
		avg := float64(total) / float64(len(parts))
		score += minFloat(sentenceBonusCap, avg/sentenceWordsPerBonus)
	}

	if all := words(item.Content); len(all) > 0 {
		technical := 0
		vocabulary := make(map[string]struct{}, len(s.cfg.Keywords.Technical))
		for _, term := range s.cfg.Keywords.Technical {
			vocabulary[strings.ToLower(term)] = struct{}{}
		}
		for _, word := range all {
			if _, ok := vocabulary[word]; ok {
				technical++
			}
		}
		density := float64(technical) / float64(len(all))
		score += minFloat(technicalBonusCap, density*technicalDensityFactor)
	}

	score += minFloat(payloadBonusCap, float64(nestedFields(item.Payload))*payloadBonusPerField)

	return domain.Clamp(score, complexityFloor, 1)
}

func (s *PriorityScorer) novelty(summary itemSummary) float64 {
	similar := 0
	s.history.Each(func(record batchRecord) {
		for _, seen := range record.items {
			if similarity(summary, seen) >= similarityThreshold {
				similar++
			}
		}
	})

	bonus := minFloat(noveltyKeywordCap, float64(countMatches(summary.terms, s.cfg.Keywords.Novelty))*noveltyKeywordBonus)

	return domain.Clamp(noveltyBaseline-float64(similar)*noveltyPenaltyPerItem+bonus, 0, 1)
}

func relevance(summary itemSummary, cctx domain.CycleContext) float64 {
	if cctx.IsEmpty() {
		return relevanceUnconstrained
	}

	score := relevanceBaseline
	if len(cctx.Goals) > 0 {
		matched := 0
		for _, goal := range cctx.Goals {
			if goalMatches(summary.terms, goal) {
				matched++
			}
		}
		score += relevanceGoalWeight * float64(matched) / float64(len(cctx.Goals))
	}

	if summary.domain != "" {
		for _, active := range cctx.ActiveDomains {
			if normalizeDomain(active) == summary.domain {
				score += relevanceDomainBonus
				break
			}
		}
	}

	return domain.Clamp(score, 0, 1)
}

// goalMatches reports whether every word of the goal appears in the item terms.
func goalMatches(itemTerms map[string]struct{}, goal string) bool {
	goalWords := words(goal)
	if len(goalWords) == 0 {
		return false
	}
	for _, word := range goalWords {
		if _, ok := itemTerms[word]; !ok {
			return false
		}
	}
	return true
}

func similarity(a, b itemSummary) float64 {
	score := jaccard(a.terms, b.terms)
	if a.domain != "" && a.domain == b.domain {
		score += domainSimilarityBonus
	}
	return score
}

// nestedFields counts the values held inside nested maps and slices of a payload.
func nestedFields(payload map[string]any) int {
	count := 0
	for _, value := range payload {
		count += countNested(value)
	}
	return count
}

func countNested(value any) int {
	switch v := value.(type) {
	case map[string]any:
		count := len(v)
		for _, nested := range v {
			count += countNested(nested)
		}
		return count
	case []any:
		count := len(v)
		for _, nested := range v {
			count += countNested(nested)
		}
		return count
	case []string:
		return len(v)
	default:
		return 0
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
