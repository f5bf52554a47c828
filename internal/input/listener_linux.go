//go:build linux

package input

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/large-farva/usage-bar/internal/clock"
)

const (
	pollTimeout    = 100 * time.Millisecond
	recordsPerRead = 64
)

type device struct {
	fd   int
	path string
}

// Listener polls a set of evdev devices and records a pulse for every
// press it reads.
type Listener struct {
	rec   Recorder
	clock clock.Clock
	log   *log.Logger
	debug bool

	devices []device
	buf     []byte
	errLog  rate.Sometimes
}

// Open enumerates dir/event* and opens every device it can read. Devices
// that fail to open are skipped; ErrNoDevices is returned if none remain.
func Open(dir string, rec Recorder, clk clock.Clock, logger *log.Logger, debug bool) (*Listener, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "event*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	l := &Listener{
		rec:    rec,
		clock:  clk,
		log:    logger,
		debug:  debug,
		buf:    make([]byte, RecordSize*recordsPerRead),
		errLog: rate.Sometimes{Interval: 10 * time.Second},
	}

	for _, p := range paths {
		fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			if debug {
				logger.Printf("skipping %s: %v", p, err)
			}
			continue
		}
		l.devices = append(l.devices, device{fd: fd, path: p})
		logger.Printf("monitoring %s", p)
	}

	if len(l.devices) == 0 {
		return nil, fmt.Errorf("%w in %s (try running as a member of the input group)", ErrNoDevices, dir)
	}
	logger.Printf("monitoring %d devices", len(l.devices))
	return l, nil
}

// Devices returns the paths currently being monitored.
func (l *Listener) Devices() []string {
	out := make([]string, len(l.devices))
	for i, d := range l.devices {
		out[i] = d.path
	}
	return out
}

// Run polls the devices until ctx is cancelled. A device that reports an
// error or hangs up (unplugged) is dropped; the others keep going.
func (l *Listener) Run(ctx context.Context) {
	fds := make([]unix.PollFd, 0, len(l.devices))

	for ctx.Err() == nil {
		fds = fds[:0]
		for _, d := range l.devices {
			fds = append(fds, unix.PollFd{Fd: int32(d.fd), Events: unix.POLLIN})
		}

		n, err := unix.Poll(fds, int(pollTimeout/time.Millisecond))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			l.errLog.Do(func() { l.log.Printf("poll: %v", err) })
			time.Sleep(pollTimeout)
			continue
		}
		if n == 0 {
			continue
		}

		var dead []int
		for i, pfd := range fds {
			switch {
			case pfd.Revents&unix.POLLIN != 0:
				if !l.read(l.devices[i]) {
					dead = append(dead, i)
				}
			case pfd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0:
				dead = append(dead, i)
			}
		}
		l.drop(dead)
	}
}

// read drains one device. It reports false when the device is gone.
func (l *Listener) read(d device) bool {
	for {
		n, err := unix.Read(d.fd, l.buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				return true
			}
			l.errLog.Do(func() { l.log.Printf("read %s: %v", d.path, err) })
			return !errors.Is(err, unix.ENODEV)
		}
		if n == 0 {
			return false
		}

		presses := CountPresses(l.buf[:n])
		if presses > 0 {
			now := l.clock.Now()
			for range presses {
				l.rec.RecordPulse(now)
			}
		}
		if n < len(l.buf) {
			return true
		}
	}
}

func (l *Listener) drop(idx []int) {
	if len(idx) == 0 {
		return
	}
	for j := len(idx) - 1; j >= 0; j-- {
		d := l.devices[idx[j]]
		_ = unix.Close(d.fd)
		l.log.Printf("stopped monitoring %s", d.path)
		l.devices = append(l.devices[:idx[j]], l.devices[idx[j]+1:]...)
	}
}

// Close releases every device.
func (l *Listener) Close() error {
	var errs []error
	for _, d := range l.devices {
		if err := unix.Close(d.fd); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", d.path, err))
		}
	}
	l.devices = nil
	return errors.Join(errs...)
}
