package activity

import (
	"math/rand/v2"
	"sort"
	"sync"
	"testing"
	"time"
)

var base = time.Unix(1_000_000, 0)

func at(sec float64) time.Time {
	return base.Add(time.Duration(sec * float64(time.Second)))
}

func TestTrimAndCount_Empty(t *testing.T) {
	a := New()
	if got := a.TrimAndCount(at(0), DefaultWindow); got != 0 {
		t.Errorf("TrimAndCount on empty window = %d; want 0", got)
	}
}

func TestTrimAndCount_BoundaryIsExclusive(t *testing.T) {
	a := New()
	a.RecordPulse(at(0))  // exactly now-10: dropped
	a.RecordPulse(at(0.5))
	a.RecordPulse(at(9.9))

	if got := a.TrimAndCount(at(10), DefaultWindow); got != 2 {
		t.Errorf("TrimAndCount = %d; want 2", got)
	}
	if got := a.Len(); got != 2 {
		t.Errorf("Len after trim = %d; want 2", got)
	}
}

func TestTrimAndCount_AllExpired(t *testing.T) {
	a := New()
	for i := 0; i < 5; i++ {
		a.RecordPulse(at(float64(i)))
	}
	if got := a.TrimAndCount(at(100), DefaultWindow); got != 0 {
		t.Errorf("TrimAndCount = %d; want 0", got)
	}
	a.RecordPulse(at(100))
	if got := a.TrimAndCount(at(100), DefaultWindow); got != 1 {
		t.Errorf("TrimAndCount after new pulse = %d; want 1", got)
	}
}

// The trimmed window must match a plain filter over the recorded pulses.
func TestTrimAndCount_MatchesFilter(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for trial := 0; trial < 200; trial++ {
		n := r.IntN(60)
		pulses := make([]time.Time, n)
		for i := range pulses {
			pulses[i] = at(r.Float64() * 40)
		}
		sort.Slice(pulses, func(i, j int) bool { return pulses[i].Before(pulses[j]) })

		a := New()
		for _, p := range pulses {
			a.RecordPulse(p)
		}

		now := at(r.Float64() * 50)
		window := time.Duration(1+r.IntN(15)) * time.Second
		cutoff := now.Add(-window)

		want := 0
		for _, p := range pulses {
			if p.After(cutoff) {
				want++
			}
		}

		got := a.TrimAndCount(now, window)
		if got != want {
			t.Fatalf("trial %d: TrimAndCount = %d; want %d", trial, got, want)
		}

		a.mu.Lock()
		for _, p := range a.pulses {
			if !p.After(cutoff) {
				t.Fatalf("trial %d: retained pulse %v not after cutoff %v", trial, p, cutoff)
			}
		}
		a.mu.Unlock()
	}
}

// No pulse recorded concurrently with trimming may be lost or double counted.
func TestTrimAndCount_ConcurrentProducer(t *testing.T) {
	a := New()
	const pulses = 5000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < pulses; i++ {
			a.RecordPulse(at(1))
		}
	}()

	for i := 0; i < 100; i++ {
		// Nothing is older than the window, so trimming must never drop anything.
		a.TrimAndCount(at(2), DefaultWindow)
	}
	wg.Wait()

	if got := a.TrimAndCount(at(2), DefaultWindow); got != pulses {
		t.Errorf("TrimAndCount = %d; want %d", got, pulses)
	}
}
