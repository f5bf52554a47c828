// Package telemetry defines the typed JSON events sent to WebSocket
// clients of usagebard. The unix socket feed carries bare codes; these
// events are the richer mirror for dashboards and usagebarctl.
package telemetry

import (
	"time"

	"github.com/large-farva/usage-bar/internal/typing"
)

// EventType identifies the kind of WebSocket event.
type EventType string

const (
	EventHeartbeat EventType = "heartbeat"
	EventState     EventType = "state"
)

// Event is the base envelope shared by every event type.
type Event struct {
	Type EventType `json:"type"`
	TS   string    `json:"ts"`
}

// NowTS returns the current UTC time as an RFC 3339 nano string, matching the
// timestamp format used across all events.
func NowTS() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Heartbeat is sent periodically so clients can detect connectivity and
// monitor daemon uptime.
type Heartbeat struct {
	Event
	State         string `json:"state"`
	Code          int    `json:"code"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	WindowCount   int    `json:"window_count"`
}

// StateTransition is emitted whenever the notification state changes
// (e.g. TYPING -> BREAK_DUE). From is empty for the first state.
type StateTransition struct {
	Event
	From string `json:"from"`
	To   string `json:"to"`
	Code int    `json:"code"`

	// BreakFinishAt and BreakDueAt are RFC 3339 times, empty when unset.
	BreakFinishAt  string  `json:"break_finish_at,omitempty"`
	BreakDueAt     string  `json:"break_due_at,omitempty"`
	PenaltySeconds float64 `json:"penalty_seconds"`
}

// NewStateTransition builds the event for a change from prev to next. A
// negative prev means there was no previous state.
func NewStateTransition(prev, next typing.Notification, s typing.State, p typing.Params) StateTransition {
	ev := StateTransition{
		Event:          Event{Type: EventState, TS: NowTS()},
		To:             next.String(),
		Code:           int(next),
		BreakFinishAt:  formatTime(s.BreakFinishAt),
		BreakDueAt:     formatTime(s.BreakDueAt(p)),
		PenaltySeconds: s.OverspeedPenalty.Seconds(),
	}
	if prev.Valid() {
		ev.From = prev.String()
	}
	return ev
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
