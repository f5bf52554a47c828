package ctl

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeDaemon(healthz int, status string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(healthz)
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(status))
	})
	return httptest.NewServer(mux)
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name      string
		healthz   int
		status    string
		healthy   bool
		state     string
		errSubstr string
	}{
		{"tracking", http.StatusOK, `{"state":"TYPING","devices":["/dev/input/event3"]}`, true, "TYPING", ""},
		{"no devices", http.StatusOK, `{"state":"BREAK","devices":[]}`, false, "BREAK", "no input devices"},
		{"healthz failing", http.StatusServiceUnavailable, `{}`, false, "", "HTTP 503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeDaemon(tt.healthz, tt.status)
			defer srv.Close()

			r := checkHealth(srv.URL + "/")
			if r.Healthy != tt.healthy || r.State != tt.state {
				t.Errorf("report = %+v; want healthy=%v state=%q", r, tt.healthy, tt.state)
			}
			if !strings.Contains(r.Error, tt.errSubstr) {
				t.Errorf("Error = %q; want it to contain %q", r.Error, tt.errSubstr)
			}
			if r.URL != srv.URL {
				t.Errorf("URL = %q; want trailing slash trimmed", r.URL)
			}
		})
	}
}

func TestCheckHealth_Unreachable(t *testing.T) {
	srv := fakeDaemon(http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	if r := checkHealth(url); r.Healthy || r.Error == "" {
		t.Errorf("report = %+v; want unhealthy with an error", r)
	}
}
