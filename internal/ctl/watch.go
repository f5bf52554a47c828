package ctl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/large-farva/usage-bar/internal/typing"
)

// WatchOptions controls the watch command behavior.
type WatchOptions struct {
	Socket string        // notification socket path
	JSON   bool          // one JSON object per state change
	Once   bool          // exit on disconnect instead of reconnecting
	Retry  time.Duration // reconnect delay, 5s when zero
}

// Watch connects to the notification socket and prints every state change
// until interrupted. Lost connections are retried like the overlay does.
func Watch(opts WatchOptions) error {
	if opts.Retry <= 0 {
		opts.Retry = 5 * time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", opts.Socket)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if opts.Once {
				return err
			}
			if !opts.JSON {
				fmt.Printf("  %s %s, retrying in %s\n", warnStyle.Render("unavailable"), dim(opts.Socket), formatDuration(opts.Retry))
			}
			if !sleepOrCancel(ctx, opts.Retry) {
				return nil
			}
			continue
		}

		if !opts.JSON {
			fmt.Printf("  %s %s\n", okStyle.Render("connected"), dim(opts.Socket))
		}

		err = Follow(ctx, conn, func(n typing.Notification) {
			printNotification(n, opts.JSON)
		})
		_ = conn.Close()

		if ctx.Err() != nil {
			if !opts.JSON {
				fmt.Println(dim("  disconnecting..."))
			}
			return nil
		}
		if opts.Once {
			return err
		}
		if !opts.JSON {
			fmt.Println(dim("  disconnected, reconnecting..."))
		}
		if !sleepOrCancel(ctx, opts.Retry) {
			return nil
		}
	}
}

// Follow reads newline-terminated codes from r and calls fn for each valid
// one. Lines that are not a known code are skipped. It returns nil on a
// clean EOF or when ctx is cancelled.
func Follow(ctx context.Context, r io.ReadCloser, fn func(typing.Notification)) error {
	stop := context.AfterFunc(ctx, func() { _ = r.Close() })
	defer stop()

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		n, err := typing.ParseNotification(strings.TrimSpace(sc.Text()))
		if err != nil {
			continue
		}
		fn(n)
	}

	err := sc.Err()
	if err == nil || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func printNotification(n typing.Notification, jsonOutput bool) {
	now := time.Now()
	if jsonOutput {
		b, _ := json.Marshal(map[string]any{
			"ts":    now.UTC().Format(time.RFC3339Nano),
			"state": n.String(),
			"code":  int(n),
		})
		fmt.Println(string(b))
		return
	}
	fmt.Printf("  %s %s\n", dim(now.Format("15:04:05")), stateBadge(n.String()))
}

func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
