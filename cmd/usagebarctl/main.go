// Usagebarctl is the command-line client for a running usagebard. It
// follows the unix socket feed directly, and talks to the daemon's HTTP and
// WebSocket endpoints for status queries and event streaming.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/large-farva/usage-bar/internal/ctl"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", "http://127.0.0.1:8765", "usagebard HTTP URL")
		socket  = pflag.StringP("socket", "s", "/tmp/usage-bar.sock", "Notification socket path")
		jsonOut = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --once are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	var err error
	switch cmd {
	case "watch":
		opts := ctl.WatchOptions{Socket: *socket, JSON: *jsonOut}
		watchFlags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
		watchFlags.BoolVar(&opts.Once, "once", false, "Exit when the daemon disconnects")
		watchFlags.DurationVar(&opts.Retry, "retry", 0, "Reconnect delay (default 5s)")
		_ = watchFlags.Parse(subArgs)
		err = ctl.Watch(opts)

	case "events":
		opts := ctl.EventsOptions{JSON: *jsonOut}
		eventFlags := pflag.NewFlagSet("events", pflag.ContinueOnError)
		eventFlags.StringSliceVar(&opts.Filter, "filter", nil, "Event types to show (e.g. --filter state)")
		_ = eventFlags.Parse(subArgs)
		err = ctl.Events(*host, opts)

	case "status":
		err = ctl.Status(*host, *jsonOut)

	case "health":
		err = ctl.Health(*host, *jsonOut)

	case "config":
		err = ctl.Config(*host, *jsonOut)

	case "version":
		err = ctl.VersionInfo(*host, *jsonOut)

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`
  usagebarctl: usage-bar monitor client

  USAGE
    usagebarctl [flags] <command> [command-flags]

  COMMANDS
    watch           Follow the notification socket (Ctrl-C to stop)
    events          Stream JSON events from the daemon's WebSocket
    status          Show the current state, break timers and clients
    health          Check that the daemon is reachable
    config          Show the daemon's running configuration
    version         Show CLI and daemon version information

  GLOBAL FLAGS
    -H, --host URL      Daemon base URL (default: http://127.0.0.1:8765)
    -s, --socket PATH   Notification socket (default: /tmp/usage-bar.sock)
        --json          Output raw JSON instead of formatted text

  COMMAND FLAGS
    watch:
        --once              Exit when the daemon disconnects
        --retry DURATION    Reconnect delay (default: 5s)

    events:
        --filter TYPE       Event types to show (state, heartbeat)

  EXAMPLES
    usagebarctl watch
    usagebarctl --json watch --once
    usagebarctl status
    usagebarctl events --filter state

`)
}
