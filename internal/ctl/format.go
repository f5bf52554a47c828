// Package ctl implements the client-side commands for usagebarctl.
// It reads the unix socket feed or talks to a running usagebard over HTTP
// and WebSocket, and renders the results to the terminal.
package ctl

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// lipgloss drops the colours itself when stdout is not a terminal.
var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// stateColors is the overlay palette, one colour per notification state.
var stateColors = map[string]lipgloss.Color{
	"BREAK_OVER": "#007051",
	"BREAK":      "#142F8C",
	"TYPING":     "#8C4914",
	"OVERSPEED":  "#B70000",
	"BREAK_DUE":  "#FF6D00",
}

// stateBadge renders a state name on its overlay colour.
func stateBadge(state string) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if c, ok := stateColors[state]; ok {
		style = style.Foreground(lipgloss.Color("#FFFFFF")).Background(c)
	}
	return style.Render(state)
}

func dim(s string) string    { return dimStyle.Render(s) }
func header(s string) string { return boldStyle.Render(s) }

func rule(width int) string {
	return dim("  " + strings.Repeat("─", width))
}

// row prints a label/value line in the aligned two-column layout used by
// every command.
func row(label, value string) {
	fmt.Printf("  %-14s %s\n", label, value)
}

// formatDuration renders a time.Duration as a compact human string like
// "2h 14m 8s" or "45s". Negative durations are shown as "0s".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// formatBytes renders a byte count using binary units, e.g. "12.3 MiB".
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatSince renders an RFC 3339 timestamp as the time elapsed until now.
func formatSince(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return formatDuration(now.Sub(t)) + " ago"
}

// formatUntil renders an RFC 3339 timestamp as local clock time plus the
// time remaining relative to now, e.g. "14:05:00 (in 3m 12s)".
func formatUntil(ts string, now time.Time) string {
	if ts == "" {
		return dim("-")
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	clock := t.Local().Format("15:04:05")
	if d := t.Sub(now); d > 0 {
		return clock + dim(" (in "+formatDuration(d)+")")
	}
	return clock + dim(" ("+formatDuration(now.Sub(t))+" ago)")
}
