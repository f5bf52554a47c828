package ctl

import (
	"encoding/json"
	"fmt"
)

// Config fetches and displays the daemon's running configuration.
func Config(baseURL string, jsonOutput bool) error {
	var raw json.RawMessage
	if err := getJSON(baseURL, "/api/config", &raw); err != nil {
		return err
	}

	if jsonOutput {
		var v any
		_ = json.Unmarshal(raw, &v)
		return printJSON(v)
	}

	var cfg struct {
		BreakThreshold           float64 `json:"break_threshold"`
		BreakLength              float64 `json:"break_length"`
		OverspeedThreshold       int     `json:"overspeed_threshold"`
		OverspeedCountMultiplier float64 `json:"overspeed_count_multiplier"`
		MaxOverspeedPenalty      float64 `json:"max_overspeed_penalty"`
		Socket                   struct {
			Path string `json:"path"`
		} `json:"socket"`
		Server struct {
			Bind string `json:"bind"`
		} `json:"server"`
		Logging struct {
			Level string `json:"level"`
		} `json:"logging"`
		Input struct {
			Dir string `json:"dir"`
		} `json:"input"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(header("  USAGE BAR CONFIG"))
	fmt.Println(rule(38))
	row(dim("Break after:"), fmt.Sprintf("%gs idle", cfg.BreakThreshold))
	row(dim("Session:"), fmt.Sprintf("%gs", cfg.BreakLength))
	row(dim("Overspeed:"), fmt.Sprintf("> %d presses / 10s", cfg.OverspeedThreshold))
	row(dim("Penalty:"), fmt.Sprintf("%gs per press, max %gs", cfg.OverspeedCountMultiplier, cfg.MaxOverspeedPenalty))
	fmt.Println()
	fmt.Println(header("  [socket]"))
	row(dim("path"), cfg.Socket.Path)
	fmt.Println(header("  [server]"))
	row(dim("bind"), cfg.Server.Bind)
	fmt.Println(header("  [logging]"))
	row(dim("level"), cfg.Logging.Level)
	fmt.Println(header("  [input]"))
	row(dim("dir"), cfg.Input.Dir)
	fmt.Println()

	return nil
}
