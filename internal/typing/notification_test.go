package typing

import (
	"testing"
	"time"
)

func TestResolve_Precedence(t *testing.T) {
	typingStart := ts(0)

	tests := []struct {
		name  string
		state State
		now   time.Time
		want  Notification
	}{
		{
			name: "startup",
			want: Break,
		},
		{
			name:  "overspeed beats break due",
			state: State{InOverspeed: true, TypingStartAt: typingStart, OverspeedPenalty: time.Minute},
			now:   ts(99999),
			want:  Overspeed,
		},
		{
			name:  "overspeed beats break",
			state: State{InOverspeed: true, LastZeroAt: ts(0), BreakFinishAt: ts(300)},
			now:   ts(1),
			want:  Overspeed,
		},
		{
			name:  "break in progress",
			state: State{LastZeroAt: ts(0), BreakFinishAt: ts(300)},
			now:   ts(10),
			want:  Break,
		},
		{
			name:  "break elapsed but not yet acknowledged still counts as break",
			state: State{LastZeroAt: ts(0), BreakFinishAt: ts(300)},
			now:   ts(400),
			want:  Break,
		},
		{
			name:  "break over",
			state: State{LastZeroAt: ts(0)},
			now:   ts(400),
			want:  BreakOver,
		},
		{
			name:  "typing",
			state: State{TypingStartAt: typingStart},
			now:   ts(1200),
			want:  Typing,
		},
		{
			name:  "break due",
			state: State{TypingStartAt: typingStart},
			now:   ts(1200.5),
			want:  BreakDue,
		},
		{
			name:  "penalty delays break due",
			state: State{TypingStartAt: typingStart, OverspeedPenalty: 100 * time.Second},
			now:   ts(1250),
			want:  Typing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.state, testParams, tt.now); got != tt.want {
				t.Errorf("Resolve = %v; want %v", got, tt.want)
			}
		})
	}
}

// Overspeed is reported if and only if InOverspeed is set.
func TestResolve_OverspeedIff(t *testing.T) {
	s := NewState()
	counts := []int{0, 20, 5, 30, 0, 0, 16, 15, 1}
	for i, c := range counts {
		now := ts(float64(i * 400))
		s.Update(c, now, testParams)
		got := Resolve(*s, testParams, now)
		if s.InOverspeed != (got == Overspeed) {
			t.Fatalf("step %d: InOverspeed=%v but Resolve=%v", i, s.InOverspeed, got)
		}
		if s.InOverspeed && (got == Typing || got == BreakDue) {
			t.Fatalf("step %d: %v while overspeed", i, got)
		}
	}
}

func TestNotification_Codes(t *testing.T) {
	want := map[Notification]string{
		BreakOver: "0",
		Break:     "1",
		Typing:    "2",
		Overspeed: "3",
		BreakDue:  "4",
	}
	for n, code := range want {
		if n.Code() != code {
			t.Errorf("%v.Code() = %q; want %q", n, n.Code(), code)
		}
		parsed, err := ParseNotification(code)
		if err != nil || parsed != n {
			t.Errorf("ParseNotification(%q) = %v, %v", code, parsed, err)
		}
	}
}

func TestParseNotification_Invalid(t *testing.T) {
	for _, code := range []string{"", "5", "-1", "x"} {
		if _, err := ParseNotification(code); err == nil {
			t.Errorf("ParseNotification(%q) succeeded; want error", code)
		}
	}
	if got := Notification(9).String(); got != "UNKNOWN(9)" {
		t.Errorf("String() = %q", got)
	}
}
