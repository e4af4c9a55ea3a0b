// Package router implements IronDrop's request dispatch: an ordered
// exact/prefix route table, Basic-auth-only middleware, and a filesystem
// fallback for unmatched paths, per SPEC_FULL.md §4.6. Grounded on the
// teacher's http.ServeMux-based dispatch in
// _examples/zulfikawr-warp/internal/server/http.go, generalized to a
// hand-rolled table since internal/httpproto replaces net/http entirely (no
// http.ServeMux is available to register against).
package router

import (
	"strings"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
	"github.com/dev-harsh1998/irondrop/internal/httpproto"
	"github.com/dev-harsh1998/irondrop/internal/logging"
	"go.uber.org/zap"
)

// MatchKind selects how Path is compared against the request path.
type MatchKind int

const (
	Exact MatchKind = iota
	Prefix
)

// Handler answers one request. Handlers return a *Response and never write
// to the connection directly; the caller (C7) owns writing.
type Handler func(req *httpproto.Request) (*httpproto.Response, error)

// Route is one entry in the table. Method is case-normalized on
// registration; "" matches any method.
type Route struct {
	Method    string
	Kind      MatchKind
	Path      string
	Handler   Handler
	NoAuth    bool // bypasses the Basic-auth middleware (e.g. /metrics)
}

// Middleware runs before route handling and may short-circuit with a
// *apperror.Error.
type Middleware func(req *httpproto.Request, route *Route) *apperror.Error

// Router holds registration-ordered routes and the Fallback handler used
// when no route matches.
type Router struct {
	routes     []Route
	middleware []Middleware
	Fallback   Handler
}

// New returns an empty Router.
func New() *Router {
	return &Router{}
}

// Handle registers a route. First match wins at dispatch time, so more
// specific routes should be registered before broader prefix ones.
func (rt *Router) Handle(method string, kind MatchKind, path string, h Handler) {
	rt.routes = append(rt.routes, Route{Method: strings.ToUpper(method), Kind: kind, Path: path, Handler: h})
}

// HandleNoAuth registers a route exempt from the Basic-auth middleware
// (SPEC_FULL.md §4.6's /_irondrop/metrics carve-out).
func (rt *Router) HandleNoAuth(method string, kind MatchKind, path string, h Handler) {
	rt.routes = append(rt.routes, Route{Method: strings.ToUpper(method), Kind: kind, Path: path, Handler: h, NoAuth: true})
}

// Use appends a middleware to run (in registration order) before the
// matched handler, for every route except those registered with NoAuth.
func (rt *Router) Use(m Middleware) {
	rt.middleware = append(rt.middleware, m)
}

// match finds the first registered route whose method and path match req,
// ignoring any query string (already split off by httpproto.Parse).
func (rt *Router) match(req *httpproto.Request) *Route {
	for i := range rt.routes {
		r := &rt.routes[i]
		if r.Method != "" && r.Method != req.Method {
			continue
		}
		switch r.Kind {
		case Exact:
			if req.Path == r.Path {
				return r
			}
		case Prefix:
			if strings.HasPrefix(req.Path, r.Path) {
				return r
			}
		}
	}
	return nil
}

// Dispatch resolves req to a route (or the filesystem Fallback), runs
// middleware unless the route opts out, and invokes the handler.
func (rt *Router) Dispatch(req *httpproto.Request) (*httpproto.Response, error) {
	route := rt.match(req)
	if route == nil {
		if rt.Fallback == nil {
			return nil, apperror.New(apperror.NotFound, "not found")
		}
		return rt.Fallback(req)
	}

	if !route.NoAuth {
		for _, mw := range rt.middleware {
			if err := mw(req, route); err != nil {
				logging.Debug("request rejected by middleware",
					zap.String("method", req.Method), zap.String("path", req.Path), zap.String("reason", err.Message))
				return nil, err
			}
		}
	}

	resp, err := route.Handler(req)
	if err != nil {
		logging.Debug("route handler returned an error",
			zap.String("method", req.Method), zap.String("path", req.Path), zap.Error(err))
	}
	return resp, err
}
