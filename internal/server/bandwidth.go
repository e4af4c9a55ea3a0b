package server

import (
	"context"
	"net"

	"golang.org/x/time/rate"
)

// throttledConn wraps a net.Conn so every Write is paced by that
// connection's own bytes-per-second rate.Limiter, implementing the optional rate_limit_mbps
// setting from SPEC_FULL.md §6. Grounded on original_source/src/server.rs's
// per-connection bandwidth governor, translated from its hand-rolled
// sleep-based throttle to golang.org/x/time/rate's token bucket.
type throttledConn struct {
	net.Conn
	limiter *rate.Limiter
}

// newThrottledConn wraps conn to admit at most mbps megabits per second of
// write traffic. The burst size is set to one second's worth of traffic so
// short bursts aren't needlessly fragmented.
func newThrottledConn(conn net.Conn, mbps float64) net.Conn {
	bytesPerSecond := mbps * 1024 * 1024 / 8
	limit := rate.Limit(bytesPerSecond)
	burst := int(bytesPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &throttledConn{Conn: conn, limiter: rate.NewLimiter(limit, burst)}
}

func (c *throttledConn) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	burst := c.limiter.Burst()
	written := 0
	for written < len(p) {
		chunk := len(p) - written
		if chunk > burst {
			chunk = burst
		}
		if err := c.limiter.WaitN(context.Background(), chunk); err != nil {
			return written, err
		}
		n, err := c.Conn.Write(p[written : written+chunk])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// maybeThrottle returns conn wrapped in a throttledConn when mbps > 0, or
// conn unchanged otherwise.
func maybeThrottle(conn net.Conn, mbps float64) net.Conn {
	if mbps <= 0 {
		return conn
	}
	return newThrottledConn(conn, mbps)
}
