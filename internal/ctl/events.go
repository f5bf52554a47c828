package ctl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// EventsOptions controls the events command behavior.
type EventsOptions struct {
	Filter []string // event types to show (empty = all)
	JSON   bool     // output raw JSON per event
}

// Events connects to the daemon's WebSocket endpoint and streams JSON
// events to the terminal in a human-readable format until interrupted.
func Events(baseURL string, opts EventsOptions) error {
	u, err := wsURL(baseURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if !opts.JSON {
		fmt.Println()
		fmt.Printf("  %s %s\n", okStyle.Render("connected"), dim(u))
		if len(opts.Filter) > 0 {
			fmt.Printf("  %s %s\n", dim("filter:"), dim(strings.Join(opts.Filter, ", ")))
		}
		fmt.Println(rule(50))
		fmt.Println()
	}

	filterSet := make(map[string]bool, len(opts.Filter))
	for _, f := range opts.Filter {
		filterSet[f] = true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}

			if len(filterSet) > 0 {
				var ev map[string]any
				if err := json.Unmarshal(msg, &ev); err == nil {
					evType, _ := ev["type"].(string)
					if !filterSet[evType] {
						continue
					}
				}
			}

			if opts.JSON {
				fmt.Println(string(msg))
			} else {
				fmt.Println(renderEvent(msg))
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
		if !opts.JSON {
			fmt.Println()
			fmt.Println(dim("  disconnecting..."))
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(1*time.Second),
		)
		return nil
	case <-done:
		return nil
	}
}

// wsURL turns the daemon base URL into its /ws endpoint.
func wsURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// renderEvent formats a JSON event as one line. Unknown event types fall
// back to the raw JSON so nothing is lost.
func renderEvent(raw []byte) string {
	var ev map[string]any
	if err := json.Unmarshal(raw, &ev); err != nil {
		return "  " + string(raw)
	}

	evType, _ := ev["type"].(string)
	ts := dim(formatEventTime(ev))

	switch evType {
	case "heartbeat":
		state, _ := ev["state"].(string)
		uptime, _ := ev["uptime_seconds"].(float64)
		count, _ := ev["window_count"].(float64)
		return fmt.Sprintf("  %s %s  %s  %s  up %s",
			ts,
			dim("heartbeat"),
			stateBadge(state),
			dim(fmt.Sprintf("%d presses", int(count))),
			dim(formatDuration(time.Duration(uptime)*time.Second)),
		)

	case "state":
		from, _ := ev["from"].(string)
		to, _ := ev["to"].(string)
		penalty, _ := ev["penalty_seconds"].(float64)
		line := fmt.Sprintf("  %s %s  ", ts, header("STATE"))
		if from != "" {
			line += stateBadge(from) + dim(" -> ")
		}
		line += stateBadge(to)
		if penalty > 0 {
			line += dim(fmt.Sprintf("  penalty %s", formatDuration(time.Duration(penalty*float64(time.Second)))))
		}
		return line
	}
	return "  " + string(raw)
}

// formatEventTime extracts and shortens the timestamp from an event.
func formatEventTime(ev map[string]any) string {
	tsRaw, ok := ev["ts"].(string)
	if !ok {
		return "        "
	}
	t, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return tsRaw
	}
	return t.Local().Format("15:04:05")
}
