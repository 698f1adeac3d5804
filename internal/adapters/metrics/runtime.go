// Package metrics provides numeric sources backed by process statistics.
package metrics

import (
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bnema/focus-budget-cli/internal/ports"
)

const (
	boostKeyPrefix      = "tier_boost."
	defaultRefresh      = time.Second
	defaultGoroutineCap = 10000
	neutralSample       = 0.5
)

// Snapshot is the subset of runtime statistics the source reads.
type Snapshot struct {
	HeapInuse  uint64
	HeapSys    uint64
	Goroutines int
}

func ReadRuntime() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Snapshot{
		HeapInuse:  m.HeapInuse,
		HeapSys:    m.HeapSys,
		Goroutines: runtime.NumGoroutine(),
	}
}

// RuntimeSource answers tier boost samples with the current process headroom:
// 1 when the heap and goroutine count are idle, 0 when saturated. Snapshots are
// cached for the refresh interval since reading memstats stops the world.
type RuntimeSource struct {
	read         func() Snapshot
	now          func() time.Time
	refresh      time.Duration
	goroutineCap int

	mu       sync.Mutex
	sampled  time.Time
	headroom float64
}

var _ ports.NumericSource = (*RuntimeSource)(nil)

type Option func(*RuntimeSource)

func WithReader(read func() Snapshot) Option {
	return func(s *RuntimeSource) {
		if read != nil {
			s.read = read
		}
	}
}

func WithClock(clock ports.Clock) Option {
	return func(s *RuntimeSource) {
		if clock != nil {
			s.now = clock.Now
		}
	}
}

func WithRefresh(d time.Duration) Option {
	return func(s *RuntimeSource) {
		s.refresh = d
	}
}

func WithGoroutineCap(n int) Option {
	return func(s *RuntimeSource) {
		if n > 0 {
			s.goroutineCap = n
		}
	}
}

func NewRuntimeSource(opts ...Option) *RuntimeSource {
	s := &RuntimeSource{
		read:         ReadRuntime,
		now:          time.Now,
		refresh:      defaultRefresh,
		goroutineCap: defaultGoroutineCap,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RuntimeSource) Sample(key string) float64 {
	if !strings.HasPrefix(key, boostKeyPrefix) {
		return neutralSample
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.sampled.IsZero() || now.Sub(s.sampled) >= s.refresh {
		s.headroom = headroom(s.read(), s.goroutineCap)
		s.sampled = now
	}

	return s.headroom
}

func headroom(snap Snapshot, goroutineCap int) float64 {
	heap := 0.0
	if snap.HeapSys > 0 {
		heap = float64(snap.HeapInuse) / float64(snap.HeapSys)
	}
	goroutines := float64(snap.Goroutines) / float64(goroutineCap)

	pressure := heap
	if goroutines > pressure {
		pressure = goroutines
	}
	if pressure > 1 {
		pressure = 1
	}

	return 1 - pressure
}
