package app

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/large-farva/usage-bar/internal/hub"
)

// StatusResponse is the body of GET /api/status.
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

	Clients []hub.ClientInfo `json:"clients"`
	Process *ProcessStats    `json:"process,omitempty"`
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/version", a.handleVersion)
	mux.Handle("/ws", a.wsHub.Handler())
	return mux
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// Status builds the status snapshot. It only reads published state and is
// safe to call from any goroutine.
func (a *App) Status() StatusResponse {
	s := a.snap.Load()
	n := a.Current()

	configPath := a.configPath
	if configPath == "" {
		configPath = "(defaults)"
	}

	return StatusResponse{
		Name:             "usage-bar",
		State:            n.String(),
		Code:             int(n),
		UptimeSeconds:    int64(a.clock.Now().Sub(a.startedAt).Seconds()),
		WindowCount:      s.Count,
		WindowSize:       a.agg.Len(),
		InOverspeed:      s.State.InOverspeed,
		PenaltySeconds:   s.State.OverspeedPenalty.Seconds(),
		TypingStartAt:    formatTime(s.State.TypingStartAt),
		BreakFinishAt:    formatTime(s.State.BreakFinishAt),
		BreakDueAt:       formatTime(s.State.BreakDueAt(a.params)),
		IdleSinceAt:      formatTime(s.State.LastZeroAt),
		SocketPath:       a.hub.Path(),
		SocketClients:    a.hub.ClientCount(),
		WebSocketClients: a.wsHub.ClientCount(),
		ConfigPath:       configPath,
		Devices:          a.devices,
		Clients:          a.hub.Clients(),
		Process:          processStats(a.proc),
	}
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Status())
}

func (a *App) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.cfg)
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
		"runtime":    runtime.Version(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
