package ui

import (
	"sync"
	"time"
)

// EventBus stores recent UI snapshots and provides incremental reads so the
// frontend can catch up after a missed push.
type EventBus struct {
	mu      sync.RWMutex
	nextSeq int64
	max     int
	history []Snapshot
	emit    func(Snapshot)
}

// NewEventBus creates a bounded in-memory snapshot buffer.
func NewEventBus(max int) *EventBus {
	if max <= 0 {
		max = 500
	}
	return &EventBus{
		max:     max,
		history: make([]Snapshot, 0, max),
	}
}

// SetEmitter installs a push callback invoked for every published snapshot.
func (b *EventBus) SetEmitter(emit func(Snapshot)) {
	b.mu.Lock()
	b.emit = emit
	b.mu.Unlock()
}

// Publish appends one snapshot, assigning sequence and timestamp, and pushes
// it to the emitter when one is installed.
func (b *EventBus) Publish(snap Snapshot) Snapshot {
	b.mu.Lock()
	b.nextSeq++
	snap.Seq = b.nextSeq
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	b.history = append(b.history, snap)
	if len(b.history) > b.max {
		trim := len(b.history) - b.max
		b.history = append([]Snapshot(nil), b.history[trim:]...)
	}
	emit := b.emit
	b.mu.Unlock()

	if emit != nil {
		emit(snap)
	}
	return snap
}

// Since returns snapshots with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.history) == 0 {
		return nil
	}

	out := make([]Snapshot, 0, len(b.history))
	for _, snap := range b.history {
		if snap.Seq > seq {
			out = append(out, snap)
		}
	}
	return out
}

// Latest returns the most recent snapshot, if any has been published.
func (b *EventBus) Latest() (Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.history) == 0 {
		return Snapshot{}, false
	}
	return b.history[len(b.history)-1], true
}
