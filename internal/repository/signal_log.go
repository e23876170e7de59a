package repository

import (
	"sync"

	"SentimentOracle/internal/domain/models"
	"SentimentOracle/internal/domain/repository"
)

// MemorySignalLog keeps the session's signal history in memory.
// A positive capacity keeps only the most recent events.
type MemorySignalLog struct {
	mu       sync.RWMutex
	events   []models.SignalEvent
	capacity int
}

// NewMemorySignalLog creates an in-memory log; capacity <= 0 means unbounded.
func NewMemorySignalLog(capacity int) *MemorySignalLog {
	if capacity < 0 {
		capacity = 0
	}
	return &MemorySignalLog{capacity: capacity}
}

// Append adds ev to the log, dropping the oldest events beyond capacity.
// An event with an unknown signal is rejected with ErrInvalidInput.
func (l *MemorySignalLog) Append(ev models.SignalEvent) error {
	if !ev.Signal.Valid() {
		return models.InvalidInputf("signal %q", ev.Signal)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, ev)
	if l.capacity > 0 && len(l.events) > l.capacity {
		drop := len(l.events) - l.capacity
		copy(l.events, l.events[drop:])
		l.events = l.events[:l.capacity]
	}
	return nil
}

// ReadAll returns a copy of the history, oldest first.
func (l *MemorySignalLog) ReadAll() []models.SignalEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.SignalEvent, len(l.events))
	copy(out, l.events)
	return out
}

var _ repository.SignalLog = (*MemorySignalLog)(nil)
