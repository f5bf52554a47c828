// Package input turns kernel evdev records from /dev/input/event* into
// activity pulses. Only key and button presses count; which key or device
// produced them is irrelevant.
package input

import (
	"encoding/binary"
	"errors"
	"strconv"
	"time"
)

var (
	// ErrNoDevices means no event device could be opened, usually for lack
	// of permission on /dev/input.
	ErrNoDevices = errors.New("no input devices found")
	// ErrUnsupported is returned on platforms without evdev.
	ErrUnsupported = errors.New("input monitoring requires linux evdev")
)

const (
	evKey      = 0x01
	keyPressed = 1
)

// struct input_event is a struct timeval (two C longs) followed by
// __u16 type, __u16 code and __s32 value.
var (
	timevalSize = 2 * strconv.IntSize / 8
	RecordSize  = timevalSize + 8
)

// Recorder receives one call per relevant input event.
type Recorder interface {
	RecordPulse(now time.Time)
}

// Event is a decoded input_event record.
type Event struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

// IsPress reports whether ev is a key or button going down. Autorepeat
// (value 2) and releases (value 0) are ignored.
func (ev Event) IsPress() bool {
	return ev.Type == evKey && ev.Value == keyPressed
}

// ParseEvent decodes exactly one record. Records of the wrong size are
// rejected.
func ParseEvent(b []byte) (Event, bool) {
	if len(b) != RecordSize {
		return Event{}, false
	}

	var sec, usec int64
	if timevalSize == 16 {
		sec = int64(binary.NativeEndian.Uint64(b[0:8]))
		usec = int64(binary.NativeEndian.Uint64(b[8:16]))
	} else {
		sec = int64(int32(binary.NativeEndian.Uint32(b[0:4])))
		usec = int64(int32(binary.NativeEndian.Uint32(b[4:8])))
	}

	rest := b[timevalSize:]
	return Event{
		Time:  time.Unix(sec, usec*int64(time.Microsecond)),
		Type:  binary.NativeEndian.Uint16(rest[0:2]),
		Code:  binary.NativeEndian.Uint16(rest[2:4]),
		Value: int32(binary.NativeEndian.Uint32(rest[4:8])),
	}, true
}

// CountPresses walks the whole records in buf and returns how many are
// presses. A trailing partial record is discarded.
func CountPresses(buf []byte) int {
	n := 0
	for len(buf) >= RecordSize {
		if ev, ok := ParseEvent(buf[:RecordSize]); ok && ev.IsPress() {
			n++
		}
		buf = buf[RecordSize:]
	}
	return n
}
