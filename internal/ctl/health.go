package ctl

import (
	"fmt"
	"net/http"
	"strings"
)

// HealthReport is the --json output of the health command.
type HealthReport struct {
	Healthy bool   `json:"healthy"`
	URL     string `json:"url"`
	State   string `json:"state,omitempty"`
	Devices int    `json:"devices"`
	Error   string `json:"error,omitempty"`
}

// checkHealth calls /healthz and, when the daemon answers, reads the state
// and device count from /api/status. A daemon that is up but watching no
// devices is reported unhealthy.
func checkHealth(baseURL string) HealthReport {
	r := HealthReport{URL: strings.TrimRight(baseURL, "/")}

	code, err := getStatus(r.URL, "/healthz")
	if err != nil {
		r.Error = err.Error()
		return r
	}
	if code != http.StatusOK {
		r.Error = fmt.Sprintf("healthz returned HTTP %d", code)
		return r
	}

	var s StatusResponse
	if err := getJSON(r.URL, "/api/status", &s); err != nil {
		r.Error = err.Error()
		return r
	}
	r.State = s.State
	r.Devices = len(s.Devices)
	if r.Devices == 0 {
		r.Error = "no input devices monitored"
		return r
	}
	r.Healthy = true
	return r
}

// Health prints whether usagebard is up and tracking input.
func Health(baseURL string, jsonOutput bool) error {
	r := checkHealth(baseURL)
	if jsonOutput {
		return printJSON(r)
	}

	fmt.Println()
	if r.Healthy {
		fmt.Printf("  %s  %s, %d devices at %s\n", okStyle.Render("HEALTHY"), stateBadge(r.State), r.Devices, dim(r.URL))
	} else {
		fmt.Printf("  %s  %s at %s\n", errorStyle.Render("UNHEALTHY"), r.Error, dim(r.URL))
	}
	fmt.Println()

	if !r.Healthy {
		return fmt.Errorf("usagebard unhealthy: %s", r.Error)
	}
	return nil
}
