// Usagebard is the usage-bar activity monitor daemon.
//
// It watches key and button presses on /dev/input, tracks typing rhythm
// and break status, and pushes the resulting notification state to every
// client connected on its unix socket. Shutdown is handled gracefully on
// SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/large-farva/usage-bar/internal/app"
	"github.com/large-farva/usage-bar/internal/config"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "Path to config file (TOML or YAML); skips the search order")
		missing    = pflag.String("missing-config", "fail", "What to do when no config file is found: fail or defaults")
		socket     = pflag.String("socket", "", "Notification socket path (overrides socket.path)")
		bind       = pflag.String("bind", "", "HTTP bind address (overrides server.bind, \"off\" disables)")
	)
	pflag.Parse()

	logger := log.New(os.Stdout, "usagebard ", log.LstdFlags|log.Lmicroseconds)

	cfg, usedPath, err := loadConfig(*configPath, *missing)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			logger.Fatalf("config: %v; create one or pass --missing-config=defaults", err)
		}
		logger.Fatalf("config load failed: %v", err)
	}
	if usedPath == "" {
		logger.Printf("no config file found, using defaults")
	} else {
		logger.Printf("loaded config from %s", usedPath)
	}

	if *socket != "" {
		cfg.Socket.Path = *socket
	}
	switch *bind {
	case "":
	case "off":
		cfg.Server.Bind = ""
	default:
		cfg.Server.Bind = *bind
	}

	a := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		ConfigPath: usedPath,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Fatalf("usagebard failed: %v", err)
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}

func loadConfig(path, missing string) (config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}
	policy, err := config.ParsePolicy(missing)
	if err != nil {
		return config.Config{}, "", err
	}
	return config.Resolve(config.SearchPaths(), policy)
}
