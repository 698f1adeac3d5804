package application

import (
	"sync"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/stretchr/testify/mock"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type panicSource struct{}

func (panicSource) Sample(string) float64 {
	panic("sensor offline")
}

// flakySource panics on its failAt-th sample and returns value otherwise.
type flakySource struct {
	mu     sync.Mutex
	calls  int
	failAt int
	value  float64
}

func (s *flakySource) Sample(string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.calls == s.failAt {
		panic("sensor glitch")
	}
	return s.value
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) CycleCompleted(result domain.CycleResult) {
	m.Called(result)
}

func (m *mockObserver) MaintenanceTick(tick domain.MaintenanceTick) {
	m.Called(tick)
}

func scoredItem(key string, score float64, tier domain.Tier) domain.ScoredItem {
	return domain.ScoredItem{
		Item:             domain.WorkItem{ID: key, Content: key},
		Key:              key,
		Score:            score,
		Tier:             tier,
		ProcessingWeight: domain.DefaultConfig().TierWeights.For(tier),
	}
}
