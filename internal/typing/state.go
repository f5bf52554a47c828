// Package typing derives the break/overspeed status from the per-tick
// pulse count and maps it onto the notification state sent to clients.
package typing

import "time"

// Params are the state machine thresholds, fixed for the process lifetime.
type Params struct {
	// BreakThreshold is the minimum break length before any penalty.
	BreakThreshold time.Duration
	// BreakLength is how long a typing session may last before a break is due.
	BreakLength time.Duration
	// OverspeedThreshold is the window count above which typing is too fast.
	OverspeedThreshold int
	// OverspeedCountMultiplier converts a window count into penalty seconds.
	OverspeedCountMultiplier float64
	MaxOverspeedPenalty      time.Duration
}

// State is the activity record mutated by Update. Zero times mean "unset".
type State struct {
	LastZeroAt       time.Time     `json:"last_zero_at"`
	OverspeedPenalty time.Duration `json:"overspeed_penalty"`
	InOverspeed      bool          `json:"in_overspeed"`
	BreakFinishAt    time.Time     `json:"break_finish_at"`
	TypingStartAt    time.Time     `json:"typing_start_at"`
}

// NewState returns a state with every field unset.
func NewState() *State {
	return &State{}
}

// Update advances the state given the latest window count observed at now.
//
// Going idle starts a break lasting BreakThreshold plus the accrued penalty.
// The penalty only grows while typing continues and is cleared once a
// break has fully elapsed.
func (s *State) Update(count int, now time.Time, p Params) {
	if count == 0 {
		switch {
		case s.LastZeroAt.IsZero():
			s.LastZeroAt = now
			s.TypingStartAt = time.Time{}
			s.BreakFinishAt = now.Add(p.BreakThreshold + s.OverspeedPenalty)
		case now.After(s.BreakFinishAt):
			s.OverspeedPenalty = 0
			s.InOverspeed = false
			s.BreakFinishAt = time.Time{}
		}
		return
	}

	// A session also starts when typing is already under way on the
	// first tick, so one of LastZeroAt and TypingStartAt is always set.
	if !s.LastZeroAt.IsZero() || s.TypingStartAt.IsZero() {
		s.LastZeroAt = time.Time{}
		s.BreakFinishAt = time.Time{}
		s.TypingStartAt = now
	}

	s.InOverspeed = count > p.OverspeedThreshold
	if s.InOverspeed {
		if candidate := p.penaltyFor(count); candidate > s.OverspeedPenalty {
			s.OverspeedPenalty = candidate
		}
	}

	if s.OverspeedPenalty > p.MaxOverspeedPenalty {
		s.OverspeedPenalty = p.MaxOverspeedPenalty
	}
}

// BreakDueAt is when the current typing session exceeds BreakLength plus
// the penalty. It is zero when no session is running.
func (s *State) BreakDueAt(p Params) time.Time {
	if s.TypingStartAt.IsZero() {
		return time.Time{}
	}
	return s.TypingStartAt.Add(p.BreakLength + s.OverspeedPenalty)
}

func (p Params) penaltyFor(count int) time.Duration {
	return time.Duration(float64(count) * p.OverspeedCountMultiplier * float64(time.Second))
}
