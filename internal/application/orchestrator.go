package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	"github.com/google/uuid"
)

const (
	loadSaturationItems = 10.0
	allocationTolerance = 1e-9
)

type cycleStats struct {
	cycles        int
	empty         int
	errors        int
	loadSum       float64
	efficiencySum float64
}

// Orchestrator runs scoring, focus tracking and allocation as one serialized cycle and
// owns the focus state, the cycle history and the processing queue.
type Orchestrator struct {
	cfg       domain.Config
	clock     ports.Clock
	source    ports.NumericSource
	observers []ports.Observer
	logger    *slog.Logger

	mu      sync.Mutex
	scorer  *PriorityScorer
	tracker *FocusTracker
	planner *AllocationPlanner
	history *ring[domain.HistoryEntry]
	stats   cycleStats

	queueMu   sync.Mutex
	queue     map[string]domain.AllocationRecord
	completed int
	lastLoad  float64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func New(cfg domain.Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:    cfg,
		clock:  ports.SystemClock{},
		source: ports.ConstantSource(0.5),
		logger: discardLogger(),
		queue:  make(map[string]domain.AllocationRecord),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.scorer = NewPriorityScorer(o.cfg)
	o.tracker = NewFocusTracker(o.cfg, o.source)
	o.planner = NewAllocationPlanner(o.cfg)
	o.history = newRing[domain.HistoryEntry](o.cfg.HistoryCapacity)
	o.lastLoad = o.cfg.MinCognitiveLoad

	return o, nil
}

func (o *Orchestrator) RunCycle(ctx context.Context, items []domain.WorkItem, cctx domain.CycleContext) (domain.CycleResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.CycleResult{}, err
	}
	if err := domain.ValidateBatch(items); err != nil {
		return domain.CycleResult{}, err
	}

	if len(items) == 0 {
		o.mu.Lock()
		o.stats.empty++
		o.mu.Unlock()
		return o.emptyResult(), nil
	}

	o.mu.Lock()
	result, err := o.runLocked(items, cctx)
	o.mu.Unlock()

	if err != nil {
		o.logger.Warn("cycle failed", "cycle", result.CycleID, "error", err)
		if o.cfg.Strict {
			return domain.CycleResult{}, err
		}
		return result, nil
	}

	o.logger.Debug("cycle completed",
		"cycle", result.CycleID,
		"items", len(items),
		"active", len(result.FocusManagement.Active),
		"load", result.CognitiveLoad,
		"efficiency", result.Allocation.Efficiency,
	)
	for _, observer := range o.observers {
		observer.CycleCompleted(result)
	}

	return result, nil
}

func (o *Orchestrator) runLocked(items []domain.WorkItem, cctx domain.CycleContext) (domain.CycleResult, error) {
	startedAt := o.clock.Now()
	cycleID := uuid.NewString()

	var (
		analysis   domain.PriorityAnalysis
		update     domain.FocusUpdate
		allocation domain.AllocationResult
	)

	novelty := o.scorer.checkpoint()
	foci := o.tracker.checkpoint()

	err := runStage(cycleID, domain.StageScoring, func() error {
		analysis = o.scorer.Score(items, cctx, startedAt)
		return nil
	})
	if err == nil {
		err = runStage(cycleID, domain.StageFocus, func() error {
			update = o.tracker.Update(analysis.Items, startedAt)
			if len(update.Active) > o.cfg.MaxFoci {
				return fmt.Errorf("active foci %d exceed capacity %d", len(update.Active), o.cfg.MaxFoci)
			}
			return nil
		})
	}
	if err == nil {
		err = runStage(cycleID, domain.StageAllocation, func() error {
			allocation = o.planner.Allocate(update.Active, o.cfg.TotalResources, startedAt)
			total := allocation.AllocatedTotal()
			if math.IsNaN(total) || total > o.cfg.TotalResources*(1+allocationTolerance) {
				return fmt.Errorf("allocated %.6f of %.6f resources", total, o.cfg.TotalResources)
			}
			return nil
		})
	}

	if err != nil {
		o.scorer.rollback(novelty)
		o.tracker.rollback(foci)
		o.stats.errors++
		return domain.CycleResult{
			CycleID:        cycleID,
			Status:         domain.CycleError,
			StartedAt:      startedAt,
			ProcessingTime: o.clock.Now().Sub(startedAt),
			Error:          err.Error(),
		}, err
	}

	for _, change := range update.Changes {
		if change.Kind == domain.FocusRemoved {
			o.logger.Debug("focus removed", "cycle", cycleID, "key", change.Key, "reason", change.Reason)
		}
	}

	load := cognitiveLoad(analysis.Items, o.cfg.MinCognitiveLoad)
	queueLength := o.enqueue(allocation.Records, load)

	result := domain.CycleResult{
		CycleID:          cycleID,
		Status:           domain.CycleCompleted,
		StartedAt:        startedAt,
		PriorityAnalysis: analysis,
		FocusManagement:  update,
		Allocation:       allocation,
		CognitiveLoad:    load,
		FocusIntensity:   update.IntensitySum(),
	}

	o.history.Push(domain.HistoryEntryFor(result))
	o.stats.cycles++
	o.stats.loadSum += load
	o.stats.efficiencySum += allocation.Efficiency

	result.Metrics = cycleMetrics(result, queueLength, o.history.Len())
	result.ProcessingTime = o.clock.Now().Sub(startedAt)

	return result, nil
}

func runStage(cycleID string, stage domain.Stage, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.ProcessingError{CycleID: cycleID, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if stageErr := fn(); stageErr != nil {
		return &domain.ProcessingError{CycleID: cycleID, Stage: stage, Err: stageErr}
	}
	return nil
}

func (o *Orchestrator) emptyResult() domain.CycleResult {
	return domain.CycleResult{
		Status:           domain.CycleEmpty,
		PriorityAnalysis: domain.PriorityAnalysis{Status: domain.AnalysisNoItems, Items: []domain.ScoredItem{}},
		FocusManagement:  domain.FocusUpdate{Active: []domain.FocusEntry{}, Changes: []domain.FocusChange{}},
		Allocation:       domain.AllocationResult{Records: []domain.AllocationRecord{}, TotalResources: o.cfg.TotalResources},
		CognitiveLoad:    o.cfg.MinCognitiveLoad,
	}
}

// cognitiveLoad is the mean processing weight scaled by how close the batch is to saturation.
func cognitiveLoad(items []domain.ScoredItem, floor float64) float64 {
	if len(items) == 0 {
		return floor
	}

	total := 0.0
	for _, item := range items {
		total += item.ProcessingWeight
	}
	average := total / float64(len(items))
	saturation := math.Min(1, float64(len(items))/loadSaturationItems)

	return domain.Clamp(average*saturation, floor, 1)
}

func cycleMetrics(result domain.CycleResult, queueLength, historyLength int) domain.CycleMetrics {
	metrics := domain.CycleMetrics{
		ItemCount:      len(result.PriorityAnalysis.Items),
		ActiveCount:    len(result.FocusManagement.Active),
		ChangeCount:    len(result.FocusManagement.Changes),
		QueueLength:    queueLength,
		AllocatedTotal: result.Allocation.AllocatedTotal(),
		HistoryLength:  historyLength,
	}

	total := 0.0
	for _, item := range result.PriorityAnalysis.Items {
		total += item.Score
		if item.Tier == domain.TierCritical {
			metrics.CriticalCount++
		}
	}
	if metrics.ItemCount > 0 {
		metrics.AverageScore = total / float64(metrics.ItemCount)
	}

	return metrics
}

func (o *Orchestrator) enqueue(records []domain.AllocationRecord, load float64) int {
	o.queueMu.Lock()
	defer o.queueMu.Unlock()

	for _, record := range records {
		o.queue[record.Key] = record
	}
	o.lastLoad = load

	return len(o.queue)
}

// Tick completes queued allocations whose estimated completion is not after now.
func (o *Orchestrator) Tick(now time.Time) domain.MaintenanceTick {
	o.queueMu.Lock()
	var completed []string
	for key, record := range o.queue {
		if !record.EstimatedCompletion.After(now) {
			completed = append(completed, key)
			delete(o.queue, key)
		}
	}
	o.completed += len(completed)
	tick := domain.MaintenanceTick{
		At:            now,
		QueueLength:   len(o.queue),
		CognitiveLoad: o.lastLoad,
		Completed:     completed,
	}
	o.queueMu.Unlock()

	sort.Strings(tick.Completed)
	if len(tick.Completed) > 0 {
		o.logger.Debug("allocations completed", "count", len(tick.Completed), "queue", tick.QueueLength)
	}
	for _, observer := range o.observers {
		observer.MaintenanceTick(tick)
	}

	return tick
}

// Start runs the maintenance ticker until ctx is done or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if o.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.running = true

	o.wg.Add(1)
	go o.maintenanceLoop(ctx)
	o.logger.Info("maintenance started", "interval", o.cfg.MaintenanceInterval)
}

func (o *Orchestrator) Stop() {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if !o.running {
		return
	}

	o.cancel()
	o.wg.Wait()
	o.running = false
	o.logger.Info("maintenance stopped")
}

func (o *Orchestrator) maintenanceLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.cfg.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Tick(o.clock.Now())
		}
	}
}

// History returns the recorded cycles, oldest first.
func (o *Orchestrator) History() []domain.HistoryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.history.Slice()
}

func (o *Orchestrator) ActiveFoci() []domain.FocusEntry {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.tracker.Snapshot()
}

func (o *Orchestrator) QueueLength() int {
	o.queueMu.Lock()
	defer o.queueMu.Unlock()

	return len(o.queue)
}

func (o *Orchestrator) Metrics() domain.Metrics {
	o.mu.Lock()
	stats := o.stats
	active := o.tracker.Len()
	o.mu.Unlock()

	o.queueMu.Lock()
	queueLength := len(o.queue)
	completed := o.completed
	o.queueMu.Unlock()

	metrics := domain.Metrics{
		Cycles:               stats.cycles,
		EmptyCycles:          stats.empty,
		ErrorCycles:          stats.errors,
		CompletedAllocations: completed,
		QueueLength:          queueLength,
		ActiveFoci:           active,
	}
	if stats.cycles > 0 {
		metrics.AverageLoad = stats.loadSum / float64(stats.cycles)
		metrics.AverageEfficiency = stats.efficiencySum / float64(stats.cycles)
	}

	return metrics
}
