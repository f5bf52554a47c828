package ctl

import (
	"fmt"
	"strings"
	"time"
)

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	Code          int    `json:"code"`
	UptimeSeconds int64  `json:"uptime_seconds"`

	WindowCount      int      `json:"window_count"`
	WindowSize       int      `json:"window_size"`
	InOverspeed      bool     `json:"in_overspeed"`
	PenaltySeconds   float64  `json:"penalty_seconds"`
	TypingStartAt    string   `json:"typing_start_at,omitempty"`
	BreakFinishAt    string   `json:"break_finish_at,omitempty"`
	BreakDueAt       string   `json:"break_due_at,omitempty"`
	IdleSinceAt      string   `json:"idle_since_at,omitempty"`
	SocketPath       string   `json:"socket_path"`
	SocketClients    int      `json:"socket_clients"`
	WebSocketClients int      `json:"websocket_clients"`
	ConfigPath       string   `json:"config_path"`
	Devices          []string `json:"devices"`

	Clients []struct {
		ID          string `json:"id"`
		ConnectedAt string `json:"connected_at"`
	} `json:"clients"`
	Process *struct {
		PID        int32   `json:"pid"`
		RSSBytes   uint64  `json:"rss_bytes"`
		CPUPercent float64 `json:"cpu_percent"`
		Threads    int32   `json:"threads"`
		Goroutines int     `json:"goroutines"`
	} `json:"process,omitempty"`
}

// Status fetches the daemon status and prints a formatted summary.
func Status(baseURL string, jsonOutput bool) error {
	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", &s); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(s)
	}

	now := time.Now()
	penalty := formatDuration(time.Duration(s.PenaltySeconds * float64(time.Second)))
	if s.InOverspeed {
		penalty += " " + stateBadge("OVERSPEED")
	}

	fmt.Println()
	fmt.Println(header("  USAGE BAR STATUS"))
	fmt.Println(rule(38))
	row(dim("State:"), stateBadge(s.State))
	row(dim("Uptime:"), formatDuration(time.Duration(s.UptimeSeconds)*time.Second))
	row(dim("Window:"), fmt.Sprintf("%d presses / 10s (%d buffered)", s.WindowCount, s.WindowSize))
	row(dim("Penalty:"), penalty)
	switch {
	case s.TypingStartAt != "":
		row(dim("Typing since:"), formatUntil(s.TypingStartAt, now))
		row(dim("Break due:"), formatUntil(s.BreakDueAt, now))
	case s.IdleSinceAt != "":
		row(dim("Idle since:"), formatUntil(s.IdleSinceAt, now))
		row(dim("Break ends:"), formatUntil(s.BreakFinishAt, now))
	}
	row(dim("Socket:"), fmt.Sprintf("%s (%d clients)", s.SocketPath, s.SocketClients))
	for _, c := range s.Clients {
		fmt.Printf("  %-14s %s %s\n", "", dim(c.ID), dim("since "+formatSince(c.ConnectedAt, now)))
	}
	row(dim("WebSocket:"), fmt.Sprintf("%d clients", s.WebSocketClients))
	row(dim("Config:"), s.ConfigPath)
	row(dim("Devices:"), fmt.Sprintf("%d", len(s.Devices)))
	for _, d := range s.Devices {
		fmt.Printf("  %-14s %s\n", "", dim(d))
	}
	if p := s.Process; p != nil {
		row(dim("Process:"), fmt.Sprintf("pid %d, %s RSS, %.1f%% CPU, %d threads, %d goroutines",
			p.PID, formatBytes(p.RSSBytes), p.CPUPercent, p.Threads, p.Goroutines))
	}
	row(dim("Host:"), strings.TrimRight(baseURL, "/"))
	fmt.Println()

	return nil
}
