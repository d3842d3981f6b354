package control

import (
	"sync"

	"github.com/san-kum/sailsim/internal/sailing"
)

// Manual passes on deltas queued from outside the tick loop. Each queued
// delta is delivered exactly once.
type Manual struct {
	mu      sync.Mutex
	pending sailing.Input
}

func NewManual() *Manual {
	return &Manual{}
}

// Nudge queues a sheet and rudder change. Safe for concurrent use.
func (m *Manual) Nudge(sheet, rudder float64) {
	m.mu.Lock()
	m.pending.SheetDelta += sheet
	m.pending.RudderDelta += rudder
	m.mu.Unlock()
}

// Queue merges a full input, overrides included.
func (m *Manual) Queue(in sailing.Input) {
	m.mu.Lock()
	m.pending = m.pending.Add(in)
	m.mu.Unlock()
}

func (m *Manual) Compute(snap sailing.Snapshot, t float64) sailing.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := m.pending
	m.pending = sailing.Input{}
	return in
}
