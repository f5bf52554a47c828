// Package activity keeps the sliding window of recent activity pulses.
// A pulse is one relevant input event (a key or button press); the window
// count approximates the current typing rate.
package activity

import (
	"sync"
	"time"
)

// DefaultWindow is the span of pulses counted on each aggregation tick.
const DefaultWindow = 10 * time.Second

// Aggregator owns the pulse window. The producer (input listener) and the
// consumer (aggregation tick) share the single mutex below.
type Aggregator struct {
	mu     sync.Mutex
	pulses []time.Time
}

// New returns an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// RecordPulse appends a pulse observed at now.
func (a *Aggregator) RecordPulse(now time.Time) {
	a.mu.Lock()
	a.pulses = append(a.pulses, now)
	a.mu.Unlock()
}

// TrimAndCount drops every pulse at or before now-window and returns how
// many remain.
func (a *Aggregator) TrimAndCount(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)

	a.mu.Lock()
	defer a.mu.Unlock()

	// Pulses arrive in non-decreasing order, so everything past the first
	// in-window entry is kept.
	i := 0
	for i < len(a.pulses) && !a.pulses[i].After(cutoff) {
		i++
	}
	if i > 0 {
		n := copy(a.pulses, a.pulses[i:])
		clear(a.pulses[n:])
		a.pulses = a.pulses[:n]
	}
	return len(a.pulses)
}

// Len returns the current window size without trimming.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pulses)
}
