package router

import (
	"testing"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
	"github.com/dev-harsh1998/irondrop/internal/httpproto"
)

func textHandler(status int, body string) Handler {
	return func(*httpproto.Request) (*httpproto.Response, error) {
		return httpproto.NewText(status, "text/plain", body), nil
	}
}

func TestDispatchExactMatch(t *testing.T) {
	rt := New()
	rt.Handle("GET", Exact, "/health", textHandler(200, "ok"))
	resp, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/health"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("expected ok, got %q", resp.Text)
	}
}

func TestDispatchMethodMismatch(t *testing.T) {
	rt := New()
	rt.Handle("GET", Exact, "/health", textHandler(200, "ok"))
	_, err := rt.Dispatch(&httpproto.Request{Method: "POST", Path: "/health"})
	if err == nil {
		t.Fatal("expected no match for wrong method")
	}
}

func TestDispatchPrefixMatch(t *testing.T) {
	rt := New()
	rt.Handle("GET", Prefix, "/static/", textHandler(200, "asset"))
	resp, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/static/logo.png"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.Text != "asset" {
		t.Errorf("expected asset, got %q", resp.Text)
	}
}

func TestDispatchFirstRegisteredWins(t *testing.T) {
	rt := New()
	rt.Handle("GET", Exact, "/a", textHandler(200, "first"))
	rt.Handle("GET", Exact, "/a", textHandler(200, "second"))
	resp, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/a"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.Text != "first" {
		t.Errorf("expected first registered route to win, got %q", resp.Text)
	}
}

func TestDispatchFallsBackToFilesystem(t *testing.T) {
	rt := New()
	called := false
	rt.Fallback = func(*httpproto.Request) (*httpproto.Response, error) {
		called = true
		return httpproto.NewText(200, "text/plain", "fallback"), nil
	}
	_, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/unknown"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !called {
		t.Error("expected fallback to be invoked for unmatched route")
	}
}

func TestDispatchNoRouteNoFallback(t *testing.T) {
	rt := New()
	_, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/nope"})
	if err == nil {
		t.Fatal("expected error with no matching route and no fallback")
	}
	ae, ok := apperror.As(err)
	if !ok || ae.Kind != apperror.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestMiddlewareRunsBeforeHandler(t *testing.T) {
	rt := New()
	rt.Use(func(*httpproto.Request, *Route) *apperror.Error {
		return apperror.New(apperror.Unauthorized, "nope")
	})
	rt.Handle("GET", Exact, "/secret", textHandler(200, "should not run"))
	_, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/secret"})
	if err == nil {
		t.Fatal("expected middleware to short-circuit")
	}
}

func TestNoAuthRouteBypassesMiddleware(t *testing.T) {
	rt := New()
	rt.Use(func(*httpproto.Request, *Route) *apperror.Error {
		return apperror.New(apperror.Unauthorized, "nope")
	})
	rt.HandleNoAuth("GET", Exact, "/metrics", textHandler(200, "metrics"))
	resp, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/metrics"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.Text != "metrics" {
		t.Errorf("expected metrics route to bypass auth, got %q / err=%v", resp.Text, err)
	}
}

func TestDispatchIgnoresQueryString(t *testing.T) {
	rt := New()
	rt.Handle("GET", Exact, "/search", textHandler(200, "results"))
	resp, err := rt.Dispatch(&httpproto.Request{Method: "GET", Path: "/search", RawQuery: "q=report"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.Text != "results" {
		t.Errorf("expected match regardless of query string, got %q", resp.Text)
	}
}
