package typing

import (
	"fmt"
	"strconv"
	"time"
)

// Notification is the externally broadcast state. The integer values are
// the wire codes and must not be reordered.
type Notification int

const (
	BreakOver Notification = iota
	Break
	Typing
	Overspeed
	BreakDue
)

var notificationNames = [...]string{
	BreakOver: "BREAK_OVER",
	Break:     "BREAK",
	Typing:    "TYPING",
	Overspeed: "OVERSPEED",
	BreakDue:  "BREAK_DUE",
}

func (n Notification) String() string {
	if n.Valid() {
		return notificationNames[n]
	}
	return "UNKNOWN(" + strconv.Itoa(int(n)) + ")"
}

// Valid reports whether n is one of the defined codes.
func (n Notification) Valid() bool {
	return n >= BreakOver && n <= BreakDue
}

// Code is the decimal wire representation without the trailing newline.
func (n Notification) Code() string {
	return strconv.Itoa(int(n))
}

// ParseNotification decodes a wire code such as "3".
func ParseNotification(code string) (Notification, error) {
	v, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("parse notification code %q: %w", code, err)
	}
	n := Notification(v)
	if !n.Valid() {
		return 0, fmt.Errorf("notification code %d out of range", v)
	}
	return n, nil
}

// Resolve maps s onto a single notification, first match wins:
//
//	overspeed > break in progress > break over > break due > typing
//
// A freshly started monitor with nothing observed yet reports Break.
func Resolve(s State, p Params, now time.Time) Notification {
	switch {
	case s.InOverspeed:
		return Overspeed
	case !s.BreakFinishAt.IsZero():
		return Break
	case !s.LastZeroAt.IsZero():
		return BreakOver
	case !s.TypingStartAt.IsZero() && now.After(s.BreakDueAt(p)):
		return BreakDue
	case !s.TypingStartAt.IsZero():
		return Typing
	}
	return Break
}
