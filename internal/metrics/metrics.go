// Package metrics provides Prometheus metrics for monitoring an IronDrop
// server, instrumented from internal/server's connection handler rather than
// kept as a standalone subsystem:
//
//   - http.go: request throughput, latency, bytes served, rate limiting
//   - upload.go: upload throughput, size, and success/failure by extension;
//     these collectors are registered, but internal/upload and
//     internal/server do not update them
//
// internal/server.Stats keeps the same counts for the JSON /_irondrop/status
// and /monitor snapshots (SPEC_FULL.md §4.7); these Collectors are the
// Prometheus-exposition view of that same state, rendered at
// /_irondrop/metrics by gathering prometheus.DefaultGatherer text exposition
// directly rather than mounting promhttp.Handler (internal/router's Handler
// type isn't an http.Handler, since internal/httpproto replaces net/http
// entirely).
package metrics
