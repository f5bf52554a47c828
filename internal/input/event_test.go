package input

import (
	"encoding/binary"
	"testing"
	"time"
)

func record(sec, usec int64, typ, code uint16, value int32) []byte {
	b := make([]byte, RecordSize)
	if timevalSize == 16 {
		binary.NativeEndian.PutUint64(b[0:8], uint64(sec))
		binary.NativeEndian.PutUint64(b[8:16], uint64(usec))
	} else {
		binary.NativeEndian.PutUint32(b[0:4], uint32(sec))
		binary.NativeEndian.PutUint32(b[4:8], uint32(usec))
	}
	rest := b[timevalSize:]
	binary.NativeEndian.PutUint16(rest[0:2], typ)
	binary.NativeEndian.PutUint16(rest[2:4], code)
	binary.NativeEndian.PutUint32(rest[4:8], uint32(value))
	return b
}

func TestParseEvent(t *testing.T) {
	ev, ok := ParseEvent(record(1700000000, 250000, evKey, 30, 1))
	if !ok {
		t.Fatal("ParseEvent rejected a full record")
	}
	if ev.Type != evKey || ev.Code != 30 || ev.Value != 1 {
		t.Errorf("ParseEvent = %+v", ev)
	}
	if want := time.Unix(1700000000, 250*int64(time.Millisecond)); !ev.Time.Equal(want) {
		t.Errorf("Time = %v; want %v", ev.Time, want)
	}
	if !ev.IsPress() {
		t.Error("IsPress = false for key down")
	}
}

func TestParseEvent_WrongSize(t *testing.T) {
	full := record(0, 0, evKey, 1, 1)
	for _, b := range [][]byte{nil, full[:RecordSize-1], append(full, 0)} {
		if _, ok := ParseEvent(b); ok {
			t.Errorf("ParseEvent accepted %d bytes", len(b))
		}
	}
}

func TestIsPress(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"key down", Event{Type: evKey, Value: 1}, true},
		{"key up", Event{Type: evKey, Value: 0}, false},
		{"autorepeat", Event{Type: evKey, Value: 2}, false},
		{"sync", Event{Type: 0x00, Value: 1}, false},
		{"relative motion", Event{Type: 0x02, Value: 1}, false},
	}
	for _, tt := range tests {
		if got := tt.ev.IsPress(); got != tt.want {
			t.Errorf("%s: IsPress = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestCountPresses(t *testing.T) {
	var buf []byte
	buf = append(buf, record(1, 0, evKey, 30, 1)...)
	buf = append(buf, record(1, 0, 0x00, 0, 0)...)
	buf = append(buf, record(1, 1, evKey, 30, 0)...)
	buf = append(buf, record(1, 2, evKey, 272, 1)...)
	buf = append(buf, record(1, 3, evKey, 31, 1)[:RecordSize/2]...)

	if got := CountPresses(buf); got != 2 {
		t.Errorf("CountPresses = %d; want 2", got)
	}
	if got := CountPresses(nil); got != 0 {
		t.Errorf("CountPresses(nil) = %d", got)
	}
}
