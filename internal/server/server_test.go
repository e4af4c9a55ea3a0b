package server

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dev-harsh1998/irondrop/internal/config"
	"github.com/dev-harsh1998/irondrop/internal/httpproto"
	"github.com/dev-harsh1998/irondrop/internal/ratelimit"
	"github.com/dev-harsh1998/irondrop/internal/router"
	"github.com/dev-harsh1998/irondrop/internal/searchindex"
)

func newZeroLimitLimiterForTest() *ratelimit.Limiter {
	return ratelimit.New(0, 0)
}

func TestServeHandlesRequestAndShutsDownCleanly(t *testing.T) {
	dir := t.TempDir()
	idx := searchindex.New(dir)
	if err := idx.Initialize(); err != nil {
		t.Fatal(err)
	}

	rt := router.New()
	rt.Handle("GET", router.Exact, "/ping", func(req *httpproto.Request) (*httpproto.Response, error) {
		return httpproto.NewText(200, "text/plain", "pong"), nil
	})

	cfg := config.DefaultConfig()
	cfg.Threads = 2

	srv := New(cfg, rt, idx)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write([]byte("GET /ping HTTP/1.1\r\nHost: test\r\n\r\n")); err != nil {
		t.Fatal(err)
	}
	reader := bufio.NewReader(conn)
	status, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status, "200") {
		t.Errorf("expected 200 status line, got %q", status)
	}
	conn.Close()

	// give handleConn a moment to record stats before we shut down.
	time.Sleep(50 * time.Millisecond)

	srv.Shutdown()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Errorf("Serve returned error after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	if got := srv.Stats().RequestSnapshot().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
}

func TestHandleConnRejectsOverRateLimit(t *testing.T) {
	dir := t.TempDir()
	idx := searchindex.New(dir)
	if err := idx.Initialize(); err != nil {
		t.Fatal(err)
	}
	rt := router.New()
	rt.Handle("GET", router.Exact, "/ping", func(req *httpproto.Request) (*httpproto.Response, error) {
		return httpproto.NewText(200, "text/plain", "pong"), nil
	})

	cfg := config.DefaultConfig()
	srv := New(cfg, rt, idx)
	srv.limiter = newZeroLimitLimiterForTest()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() { _ = srv.Serve(ln) }()
	defer srv.Shutdown()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("GET /ping HTTP/1.1\r\nHost: test\r\n\r\n")); err != nil {
		t.Fatal(err)
	}
	reader := bufio.NewReader(conn)
	status, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status, "403") {
		t.Errorf("expected a rejection status line, got %q", status)
	}
}
