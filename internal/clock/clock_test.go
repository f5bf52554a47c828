package clock

import (
	"testing"
	"time"
)

func TestFake_AdvanceAndSet(t *testing.T) {
	start := time.Unix(1000, 0)
	f := NewFake(start)

	if got := f.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v; want %v", got, start)
	}

	if got := f.Advance(1500 * time.Millisecond); !got.Equal(start.Add(1500 * time.Millisecond)) {
		t.Errorf("Advance returned %v", got)
	}

	later := time.Unix(5000, 0)
	f.Set(later)
	if got := f.Now(); !got.Equal(later) {
		t.Errorf("Now() after Set = %v; want %v", got, later)
	}
}

func TestReal_Monotonic(t *testing.T) {
	var c Clock = Real{}
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Errorf("Real clock went backwards: %v then %v", a, b)
	}
}
