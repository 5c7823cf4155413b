// Package dial retries connections until they succeed or a deadline passes.
package dial

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultInterval is the pause between connection attempts.
const DefaultInterval = time.Second

// ErrGaveUp is returned when no attempt succeeded before the deadline.
var ErrGaveUp = errors.New("connection attempts exhausted")

// Func opens one connection attempt.
type Func func(ctx context.Context) (net.Conn, error)

// TCP returns a Func dialing address over TCP.
func TCP(address string) Func {
	var d net.Dialer
	return func(ctx context.Context) (net.Conn, error) {
		return d.DialContext(ctx, "tcp", address)
	}
}

// Eventually calls dial until it returns a connection or timeout elapses.
// Each attempt is bounded by the overall deadline, and attempts are spaced
// by interval (DefaultInterval when zero). On failure the last attempt's
// error is wrapped with ErrGaveUp.
func Eventually(ctx context.Context, dial Func, timeout, interval time.Duration) (net.Conn, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	var last error
	for {
		if err := ctx.Err(); err != nil {
			if last == nil {
				last = err
			}
			return nil, fmt.Errorf("%w after %s: %w", ErrGaveUp, timeout, last)
		}

		conn, err := dial(ctx)
		if err == nil {
			return conn, nil
		}
		last = err

		timer.Reset(interval)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}
