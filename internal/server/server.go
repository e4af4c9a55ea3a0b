package server

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
	"github.com/dev-harsh1998/irondrop/internal/config"
	"github.com/dev-harsh1998/irondrop/internal/httpproto"
	"github.com/dev-harsh1998/irondrop/internal/logging"
	"github.com/dev-harsh1998/irondrop/internal/metrics"
	"github.com/dev-harsh1998/irondrop/internal/ratelimit"
	"github.com/dev-harsh1998/irondrop/internal/router"
	"github.com/dev-harsh1998/irondrop/internal/searchindex"
)

// housekeepingInterval is how often the stats-logging and rate-limiter
// cleanup goroutines tick, matching original_source/src/server.rs's
// run_server (two thread::spawn loops, each sleeping 300s).
const housekeepingInterval = 5 * time.Minute

// Server owns the accept loop, the worker pool jobs run on, and every
// long-lived subsystem a connection handler needs: the route table, request
// and upload statistics, the rate limiter, and the search index.
type Server struct {
	cfg     *config.Config
	rt      *router.Router
	stats   *Stats
	limiter *ratelimit.Limiter
	index   *searchindex.Index
	pool    *Pool

	listener   net.Listener
	shutdownCh chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// New assembles a Server. rt must already have its routes registered (see
// Register in routes.go) before Serve is called.
func New(cfg *config.Config, rt *router.Router, idx *searchindex.Index) *Server {
	return &Server{
		cfg:        cfg,
		rt:         rt,
		stats:      NewStats(),
		limiter:    ratelimit.New(120, 10),
		index:      idx,
		pool:       NewPool(cfg.Threads),
		shutdownCh: make(chan struct{}),
	}
}

// Stats exposes the live statistics object for routes and the final
// shutdown report.
func (s *Server) Stats() *Stats { return s.stats }

// Serve runs the accept loop over listener until Shutdown is called. Rather
// than literally translating the Rust original's non-blocking listener plus
// a 100ms WouldBlock poll, this blocks on Accept and relies on Shutdown
// closing the listener to unblock it with an error — the same pattern
// net/http.Server.Shutdown uses, and the idiomatic Go way to interrupt an
// accept loop.
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	s.index.Start()

	s.wg.Add(2)
	go s.statsHousekeeping()
	go s.rateLimiterHousekeeping()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownCh:
				return nil
			default:
				return err
			}
		}
		s.pool.Submit(func() { s.handleConn(conn) })
	}
}

// Shutdown stops accepting connections, drains in-flight work, and stops
// the background subsystems. It returns once everything has quiesced.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.shutdownCh)
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
	s.pool.Close()
	s.wg.Wait()
	s.index.Stop()

	rs := s.stats.RequestSnapshot()
	logging.Infof("final stats: %d requests (%d successful, %d errors), %.2f MB served over %s",
		rs.TotalRequests, rs.SuccessfulRequests, rs.ErrorRequests,
		float64(rs.BytesServed)/(1024*1024), rs.Uptime.Round(time.Second))
}

func (s *Server) statsHousekeeping() {
	defer s.wg.Done()
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rs := s.stats.RequestSnapshot()
			us := s.stats.UploadSnapshot()
			logging.Infof("📊 Request Stats: %d total (%d successful, %d errors), %.2f MB served, uptime: %ds",
				rs.TotalRequests, rs.SuccessfulRequests, rs.ErrorRequests,
				float64(rs.BytesServed)/(1024*1024), int64(rs.Uptime.Seconds()))
			logging.Infof("📦 Upload Stats: %d total (%d successful, %d failed), %d files, avg %.1fms, success rate %.1f%%",
				us.TotalUploads, us.SuccessfulUploads, us.FailedUploads, us.FilesUploaded,
				us.AverageProcessing, us.SuccessRate)
		case <-s.shutdownCh:
			return
		}
	}
}

func (s *Server) rateLimiterHousekeeping() {
	defer s.wg.Done()
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.limiter.CleanupIdle()
		case <-s.shutdownCh:
			return
		}
	}
}

// handleConn parses, dispatches, and responds to exactly one request on
// conn, then closes it (SPEC_FULL.md §4.3's Connection: close contract). A
// panic anywhere in parsing or dispatch is recovered and turned into a
// counted Internal error response rather than killing the worker goroutine.
func (s *Server) handleConn(rawConn net.Conn) {
	defer rawConn.Close()

	ip := remoteIP(rawConn)
	if ip != nil && !s.limiter.Check(ip) {
		metrics.RecordRateLimit(ip.String())
		_, _ = errorResponse(apperror.New(apperror.Forbidden, "rate limit exceeded")).Write(rawConn)
		return
	}
	if ip != nil {
		defer s.limiter.Release(ip)
	}

	conn := maybeThrottle(rawConn, s.cfg.RateLimitMbps)

	start := time.Now()
	method, path := "-", "-"
	status := 0
	var bytesWritten int64

	func() {
		defer func() {
			if r := recover(); r != nil {
				aerr := apperror.FromPanic(r)
				logging.Errorf("recovered panic handling connection: %v", r)
				status = aerr.StatusCode()
				n, _ := errorResponse(aerr).Write(conn)
				bytesWritten = n
			}
		}()

		req, err := httpproto.Parse(conn, httpproto.DefaultParseOptions())
		if err != nil {
			aerr := asAppError(err, apperror.BadRequest)
			status = aerr.StatusCode()
			n, _ := errorResponse(aerr).Write(conn)
			bytesWritten = n
			return
		}
		defer req.Close()
		method, path = req.Method, req.Path

		resp, err := s.rt.Dispatch(req)
		if err != nil {
			aerr := asAppError(err, apperror.Internal)
			status = aerr.StatusCode()
			n, _ := errorResponse(aerr).Write(conn)
			bytesWritten = n
			return
		}

		status = resp.Status
		n, werr := resp.Write(conn)
		bytesWritten = n
		if werr != nil {
			logging.Warnf("writing response to %s: %v", path, werr)
		}
	}()

	duration := time.Since(start)
	success := status > 0 && status < 400
	s.stats.RecordRequest(success, bytesWritten)
	metrics.RecordRequest(method, path, status, duration.Seconds(), bytesWritten)
}

func asAppError(err error, fallback apperror.Kind) *apperror.Error {
	if aerr, ok := apperror.As(err); ok {
		return aerr
	}
	return apperror.Wrap(fallback, "request failed", err)
}

// errorResponse renders an *apperror.Error as the JSON error body used
// across every built-in and filesystem route: {"error": "<message>"},
// with a max_bytes field added for PayloadTooLarge so a client can read the
// limit it exceeded without parsing the message text.
func errorResponse(e *apperror.Error) *httpproto.Response {
	body := map[string]interface{}{"error": e.Message}
	if e.Kind == apperror.PayloadTooLarge && e.Max > 0 {
		body["max_bytes"] = e.Max
	}
	data, err := json.Marshal(body)
	if err != nil {
		data = []byte(`{"error":"internal server error"}`)
	}
	return httpproto.NewBinary(e.StatusCode(), "application/json", data)
}

func remoteIP(conn net.Conn) net.IP {
	addr := conn.RemoteAddr()
	if addr == nil {
		return nil
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return net.ParseIP(addr.String())
	}
	return net.ParseIP(host)
}
