package application

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
)

type EventType string

const (
	EventCycleCompleted  EventType = "cycle_completed"
	EventMaintenanceTick EventType = "maintenance_tick"
)

type Event struct {
	Type  EventType
	Cycle *domain.CycleResult
	Tick  *domain.MaintenanceTick
}

// EventEmitter is an Observer that forwards notifications to a buffered channel.
// Events are dropped when the buffer stays full for longer than the send timeout.
type EventEmitter struct {
	events       chan Event
	sendTimeout  time.Duration
	droppedCount atomic.Uint64
	logger       *slog.Logger
}

var _ ports.Observer = (*EventEmitter)(nil)

func NewEventEmitter(bufferSize int, logger *slog.Logger) *EventEmitter {
	if logger == nil {
		logger = discardLogger()
	}

	return &EventEmitter{
		events:      make(chan Event, bufferSize),
		sendTimeout: 100 * time.Millisecond,
		logger:      logger,
	}
}

func (e *EventEmitter) CycleCompleted(result domain.CycleResult) {
	e.emit(Event{Type: EventCycleCompleted, Cycle: &result})
}

func (e *EventEmitter) MaintenanceTick(tick domain.MaintenanceTick) {
	e.emit(Event{Type: EventMaintenanceTick, Tick: &tick})
}

func (e *EventEmitter) emit(event Event) {
	select {
	case e.events <- event:
		return
	default:
	}

	timer := time.NewTimer(e.sendTimeout)
	defer timer.Stop()

	select {
	case e.events <- event:
	case <-timer.C:
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			e.logger.Warn("event channel full, dropping event", "type", event.Type, "dropped", count)
		}
	}
}

func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Close closes the channel; no notification may be emitted afterwards.
func (e *EventEmitter) Close() {
	close(e.events)
}
