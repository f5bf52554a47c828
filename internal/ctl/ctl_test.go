package ctl

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/large-farva/usage-bar/internal/typing"
)

func TestFollow_SkipsInvalidLines(t *testing.T) {
	r := io.NopCloser(strings.NewReader("1\n2\ngarbage\n9\n\n 3 \n4"))

	var got []typing.Notification
	err := Follow(context.Background(), r, func(n typing.Notification) {
		got = append(got, n)
	})
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}

	want := []typing.Notification{typing.Break, typing.Typing, typing.Overspeed, typing.BreakDue}
	if len(got) != len(want) {
		t.Fatalf("got %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestFollow_StopsOnCancel(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan typing.Notification, 1)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, client, func(n typing.Notification) { seen <- n })
	}()

	if _, err := server.Write([]byte("0\n")); err != nil {
		t.Fatal(err)
	}
	if n := <-seen; n != typing.BreakOver {
		t.Errorf("first notification = %v", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Follow returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}

func TestWsURL(t *testing.T) {
	tests := map[string]string{
		"http://127.0.0.1:8765":      "ws://127.0.0.1:8765/ws",
		"https://bar.example.com/":   "wss://bar.example.com/ws",
		"http://localhost:1/api?x=1": "ws://localhost:1/ws",
	}
	for in, want := range tests {
		got, err := wsURL(in)
		if err != nil || got != want {
			t.Errorf("wsURL(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := wsURL("unix:///tmp/x"); err == nil {
		t.Error("wsURL accepted a unix scheme")
	}
}

func TestRenderEvent(t *testing.T) {
	line := renderEvent([]byte(`{"type":"state","ts":"2026-01-02T03:04:05Z","from":"TYPING","to":"BREAK_DUE","penalty_seconds":40}`))
	for _, want := range []string{"STATE", "TYPING", "BREAK_DUE", "penalty 40s"} {
		if !strings.Contains(line, want) {
			t.Errorf("state line %q missing %q", line, want)
		}
	}

	line = renderEvent([]byte(`{"type":"heartbeat","state":"BREAK","uptime_seconds":75,"window_count":3}`))
	for _, want := range []string{"heartbeat", "BREAK", "3 presses", "1m 15s"} {
		if !strings.Contains(line, want) {
			t.Errorf("heartbeat line %q missing %q", line, want)
		}
	}

	if line := renderEvent([]byte("not json")); !strings.Contains(line, "not json") {
		t.Errorf("raw fallback = %q", line)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-5 * time.Second, "0s"},
		{45 * time.Second, "45s"},
		{3*time.Minute + 12*time.Second, "3m 12s"},
		{2*time.Hour + 14*time.Minute + 8*time.Second, "2h 14m 8s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUntil(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)

	if got := formatUntil(now.Add(90*time.Second).Format(time.RFC3339), now); !strings.Contains(got, "in 1m 30s") {
		t.Errorf("future = %q", got)
	}
	if got := formatUntil(now.Add(-10*time.Second).Format(time.RFC3339), now); !strings.Contains(got, "10s ago") {
		t.Errorf("past = %q", got)
	}
	if got := formatUntil("", now); !strings.Contains(got, "-") {
		t.Errorf("empty = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{12*1024*1024 + 300*1024, "12.3 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSince(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	if got := formatSince(now.Add(-75*time.Second).Format(time.RFC3339Nano), now); got != "1m 15s ago" {
		t.Errorf("formatSince = %q; want \"1m 15s ago\"", got)
	}
	if got := formatSince("garbage", now); got != "garbage" {
		t.Errorf("formatSince(garbage) = %q", got)
	}
}
