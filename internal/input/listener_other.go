//go:build !linux

package input

import (
	"context"
	"log"

	"github.com/large-farva/usage-bar/internal/clock"
)

// Listener is unavailable outside linux.
type Listener struct{}

func Open(dir string, rec Recorder, clk clock.Clock, logger *log.Logger, debug bool) (*Listener, error) {
	return nil, ErrUnsupported
}

func (l *Listener) Devices() []string       { return nil }
func (l *Listener) Run(ctx context.Context) {}
func (l *Listener) Close() error            { return nil }
