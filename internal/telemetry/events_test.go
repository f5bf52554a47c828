package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/large-farva/usage-bar/internal/typing"
)

func TestNewStateTransition(t *testing.T) {
	p := typing.Params{BreakLength: 1200 * time.Second}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := typing.State{TypingStartAt: start, OverspeedPenalty: 40 * time.Second}

	ev := NewStateTransition(typing.Typing, typing.BreakDue, s, p)
	if ev.Type != EventState || ev.From != "TYPING" || ev.To != "BREAK_DUE" || ev.Code != 4 {
		t.Errorf("event = %+v", ev)
	}
	if ev.BreakDueAt != "2026-01-02T03:24:45Z" {
		t.Errorf("BreakDueAt = %q", ev.BreakDueAt)
	}
	if ev.BreakFinishAt != "" {
		t.Errorf("BreakFinishAt = %q; want empty", ev.BreakFinishAt)
	}
	if ev.PenaltySeconds != 40 {
		t.Errorf("PenaltySeconds = %v", ev.PenaltySeconds)
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["type"] != "state" || decoded["to"] != "BREAK_DUE" {
		t.Errorf("decoded = %v", decoded)
	}
	if _, ok := decoded["break_finish_at"]; ok {
		t.Error("unset break_finish_at was encoded")
	}
}

func TestNewStateTransition_FirstState(t *testing.T) {
	ev := NewStateTransition(-1, typing.Break, typing.State{}, typing.Params{})
	if ev.From != "" || ev.To != "BREAK" {
		t.Errorf("first transition = %+v", ev)
	}
}
