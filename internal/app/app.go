// Package app wires together the input source, the activity aggregator,
// the typing state machine, the unix socket notification hub and the
// optional HTTP/WebSocket mirror. It owns the daemon's lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"

	"github.com/large-farva/usage-bar/internal/activity"
	"github.com/large-farva/usage-bar/internal/clock"
	"github.com/large-farva/usage-bar/internal/config"
	"github.com/large-farva/usage-bar/internal/hub"
	"github.com/large-farva/usage-bar/internal/input"
	"github.com/large-farva/usage-bar/internal/telemetry"
	"github.com/large-farva/usage-bar/internal/typing"
	"github.com/large-farva/usage-bar/internal/ws"
)

const (
	aggregateEvery = 100 * time.Millisecond
	notifyEvery    = 500 * time.Millisecond
	heartbeatEvery = 10 * time.Second
)

// Source produces activity pulses until its context is cancelled.
type Source interface {
	Run(ctx context.Context)
	Devices() []string
	Close() error
}

// OpenFunc opens a Source that reports pulses to rec.
type OpenFunc func(rec input.Recorder) (Source, error)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger     *log.Logger
	Cfg        config.Config
	ConfigPath string // "" when running on defaults

	// Clock and OpenSource default to the wall clock and the evdev listener.
	Clock      clock.Clock
	OpenSource OpenFunc
}

// snapshot is an immutable copy of the state published by the aggregation
// tick for every other reader.
type snapshot struct {
	State typing.State
	Count int
	At    time.Time
}

// App is the top-level daemon process.
type App struct {
	log        *log.Logger
	cfg        config.Config
	params     typing.Params
	configPath string
	clock      clock.Clock
	openSource OpenFunc

	agg   *activity.Aggregator
	state *typing.State // written only by the aggregation tick
	snap  atomic.Pointer[snapshot]

	last    typing.Notification // owned by the notification tick
	current atomic.Int32

	hub     *hub.Hub
	wsHub   *ws.Hub
	server  *http.Server
	devices []string
	proc    *process.Process

	startedAt time.Time
}

// New creates an App. Call Run to start monitoring.
func New(opts Options) *App {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	a := &App{
		log:        opts.Logger,
		cfg:        opts.Cfg,
		params:     opts.Cfg.Params(),
		configPath: opts.ConfigPath,
		clock:      clk,
		openSource: opts.OpenSource,
		agg:        activity.New(),
		state:      typing.NewState(),
		last:       -1,
		hub:        hub.New(opts.Cfg.Socket.Path, opts.Logger),
		wsHub:      ws.NewHub(),
		proc:       selfProcess(),
		startedAt:  clk.Now(),
	}
	if a.openSource == nil {
		a.openSource = a.openEvdev
	}
	a.hub.SetDebug(opts.Cfg.Debug())
	a.snap.Store(&snapshot{State: *a.state, At: a.startedAt})
	a.current.Store(int32(typing.Resolve(*a.state, a.params, a.startedAt)))
	return a
}

func (a *App) openEvdev(rec input.Recorder) (Source, error) {
	return input.Open(a.cfg.Input.Dir, rec, a.clock, a.log, a.cfg.Debug())
}

// Run opens the input source and the notification socket, then runs the
// tick loops until ctx is cancelled. Failing to open either is fatal and
// returned before anything else starts.
func (a *App) Run(ctx context.Context) error {
	src, err := a.openSource(a.agg)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	a.devices = src.Devices()

	if err := a.hub.Listen(); err != nil {
		_ = src.Close()
		return err
	}
	defer a.hub.Shutdown()

	var ln net.Listener
	if bind := a.cfg.Server.Bind; bind != "" {
		ln, err = net.Listen("tcp", bind)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("listen %s: %w", bind, err)
		}
		a.log.Printf("listening on http://%s", bind)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	spawn := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(runCtx)
		}()
	}

	spawn(src.Run)
	spawn(a.hub.Run)
	spawn(a.wsHub.Run)
	spawn(a.aggregateLoop)
	spawn(a.notifyLoop)
	spawn(a.heartbeatLoop)

	serveErr := make(chan error, 1)
	if ln != nil {
		a.server = &http.Server{
			Handler:           a.routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() { serveErr <- a.server.Serve(ln) }()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Printf("shutdown requested")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	if a.server != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.server.Shutdown(shutdownCtx)
		done()
	}
	cancel()
	a.hub.Shutdown()
	wg.Wait()

	if err := src.Close(); err != nil {
		a.log.Printf("close input: %v", err)
	}
	return runErr
}

func (a *App) aggregateLoop(ctx context.Context) {
	t := time.NewTicker(aggregateEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.aggregateTick()
		}
	}
}

// aggregateTick trims the window, advances the state machine and
// publishes a snapshot.
func (a *App) aggregateTick() {
	now := a.clock.Now()
	count := a.agg.TrimAndCount(now, activity.DefaultWindow)
	a.state.Update(count, now, a.params)
	a.snap.Store(&snapshot{State: *a.state, Count: count, At: now})
}

func (a *App) notifyLoop(ctx context.Context) {
	t := time.NewTicker(notifyEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.notifyTick()
		}
	}
}

// notifyTick resolves the latest snapshot and broadcasts it if it differs
// from what was last sent. It reports whether a broadcast happened.
func (a *App) notifyTick() bool {
	s := a.snap.Load()
	n := typing.Resolve(s.State, a.params, a.clock.Now())
	if n == a.last {
		return false
	}

	delivered := a.hub.Broadcast(n)
	a.wsHub.PublishJSON(telemetry.NewStateTransition(a.last, n, s.State, a.params))
	a.log.Printf("state changed: %s (%d clients)", n, delivered)

	a.last = n
	a.current.Store(int32(n))
	return true
}

// heartbeatLoop sends a periodic heartbeat event so WebSocket clients can
// detect connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(heartbeatEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(a.heartbeat())
		}
	}
}

func (a *App) heartbeat() telemetry.Heartbeat {
	n := a.Current()
	return telemetry.Heartbeat{
		Event:         telemetry.Event{Type: telemetry.EventHeartbeat, TS: telemetry.NowTS()},
		State:         n.String(),
		Code:          int(n),
		UptimeSeconds: int64(a.clock.Now().Sub(a.startedAt).Seconds()),
		WindowCount:   a.snap.Load().Count,
	}
}

// Current returns the most recently broadcast notification, or the one
// the startup state resolves to before the first broadcast.
func (a *App) Current() typing.Notification {
	return typing.Notification(a.current.Load())
}
