package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
	"github.com/dev-harsh1998/irondrop/internal/assets"
	"github.com/dev-harsh1998/irondrop/internal/config"
	"github.com/dev-harsh1998/irondrop/internal/httpproto"
	"github.com/dev-harsh1998/irondrop/internal/logging"
	"github.com/dev-harsh1998/irondrop/internal/router"
	"github.com/dev-harsh1998/irondrop/internal/searchindex"
	"github.com/dev-harsh1998/irondrop/internal/upload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// deprecatedUploadWarnOnce ensures the /upload alias only logs its
// deprecation notice once per process, not once per request.
var deprecatedUploadWarnOnce sync.Once

// Register wires SPEC_FULL.md §4.6's built-in routes onto rt: health and
// status, the static asset/favicon set, the monitor dashboard, the search
// endpoint, the Prometheus exposition endpoint, and (when enabled) the
// upload form and its handler under both the canonical and a deprecated
// alias path. Uptime and request/upload figures come from stats itself, so
// no separate start-time argument is needed.
func Register(rt *router.Router, cfg *config.Config, stats *Stats, idx *searchindex.Index) {
	rt.HandleNoAuth("GET", router.Exact, "/_irondrop/health", healthHandler())
	rt.HandleNoAuth("GET", router.Exact, "/_irondrop/status", healthHandler())

	rt.Handle("GET", router.Prefix, "/_irondrop/static/", staticHandler())
	rt.Handle("GET", router.Exact, "/_irondrop/logo", logoHandler())
	rt.Handle("GET", router.Exact, "/favicon.ico", faviconHandler("favicon.ico"))
	rt.Handle("GET", router.Exact, "/favicon-16x16.png", faviconHandler("favicon-16x16.png"))
	rt.Handle("GET", router.Exact, "/favicon-32x32.png", faviconHandler("favicon-32x32.png"))

	rt.Handle("GET", router.Exact, "/monitor", monitorHandler(stats))
	rt.Handle("GET", router.Exact, "/_irondrop/search", searchHandler(idx))
	rt.HandleNoAuth("GET", router.Exact, "/_irondrop/metrics", metricsHandler())

	if cfg.UploadEnabled {
		rt.Handle("GET", router.Exact, "/_irondrop/upload", uploadFormHandler("/_irondrop/upload"))
		rt.Handle("POST", router.Exact, "/_irondrop/upload", uploadHandler(cfg, stats))
		rt.Handle("GET", router.Exact, "/upload", deprecatedUploadFormHandler())
		rt.Handle("POST", router.Exact, "/upload", deprecatedUploadHandler(cfg, stats))
	}
}

func writeJSON(status int, v interface{}) (*httpproto.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "encoding JSON response", err)
	}
	resp := httpproto.NewBinary(status, "application/json; charset=utf-8", data)
	resp.Headers.Set("Cache-Control", "no-cache")
	return resp, nil
}

// healthHandler serves both /_irondrop/health and /_irondrop/status with
// the same body shape, per original_source/src/handlers.rs's health
// response.
func healthHandler() router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		body := map[string]interface{}{
			"status":    "healthy",
			"service":   "irondrop",
			"version":   ServiceVersion,
			"timestamp": time.Now().Unix(),
			"features":  Features,
		}
		return writeJSON(http.StatusOK, body)
	}
}

func staticHandler() router.Handler {
	const prefix = "/_irondrop/static/"
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		name := strings.TrimPrefix(req.Path, prefix)
		data, contentType, ok := assets.Static(name)
		if !ok {
			return nil, apperror.New(apperror.NotFound, "not found")
		}
		resp := httpproto.NewBinary(http.StatusOK, contentType, data)
		resp.Headers.Set("Cache-Control", "public, max-age=3600")
		return resp, nil
	}
}

func logoHandler() router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		data, contentType, ok := assets.Favicon("logo")
		if !ok {
			return nil, apperror.New(apperror.NotFound, "not found")
		}
		resp := httpproto.NewBinary(http.StatusOK, contentType, data)
		resp.Headers.Set("Cache-Control", "public, max-age=3600")
		return resp, nil
	}
}

func faviconHandler(name string) router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		data, contentType, ok := assets.Favicon(name)
		if !ok {
			return nil, apperror.New(apperror.NotFound, "not found")
		}
		resp := httpproto.NewBinary(http.StatusOK, contentType, data)
		resp.Headers.Set("Cache-Control", "public, max-age=86400")
		return resp, nil
	}
}

// monitorHandler serves GET /monitor: the JSON shape from
// original_source/src/http.rs's create_monitor_json when ?json=1 is set,
// otherwise the HTML dashboard.
func monitorHandler(stats *Stats) router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		rs := stats.RequestSnapshot()
		us := stats.UploadSnapshot()

		if req.Query()["json"] != "" {
			body := map[string]interface{}{
				"requests": map[string]interface{}{
					"total":      rs.TotalRequests,
					"successful": rs.SuccessfulRequests,
					"errors":     rs.ErrorRequests,
				},
				"downloads": map[string]interface{}{
					"bytes_served": rs.BytesServed,
				},
				"uptime_secs": int64(rs.Uptime.Seconds()),
				"uploads": map[string]interface{}{
					"total_uploads":         us.TotalUploads,
					"successful_uploads":    us.SuccessfulUploads,
					"failed_uploads":        us.FailedUploads,
					"files_uploaded":        us.FilesUploaded,
					"upload_bytes":          us.UploadBytes,
					"average_upload_size":   us.AverageUploadSize,
					"largest_upload":        us.LargestUpload,
					"concurrent_uploads":    us.ConcurrentUploads,
					"average_processing_ms": us.AverageProcessing,
					"success_rate":          us.SuccessRate,
				},
			}
			return writeJSON(http.StatusOK, body)
		}

		page := assets.MonitorPage(assets.MonitorSnapshot{
			Uptime:             rs.Uptime,
			TotalRequests:      rs.TotalRequests,
			SuccessfulRequests: rs.SuccessfulRequests,
			ErrorRequests:      rs.ErrorRequests,
			BytesServed:        rs.BytesServed,
			TotalUploads:       us.TotalUploads,
			FilesUploaded:      us.FilesUploaded,
			ConcurrentUploads:  us.ConcurrentUploads,
			SuccessRate:        us.SuccessRate,
		})
		resp := httpproto.NewText(http.StatusOK, "text/html; charset=utf-8", page)
		resp.Headers.Set("Cache-Control", "no-cache")
		return resp, nil
	}
}

const minSearchQueryLen = 2

// searchHandler serves GET /_irondrop/search?q=&path=&limit=&offset=, per
// SPEC_FULL.md §4.6. searchindex.Index.Search has no native offset
// parameter, so offset is simulated by requesting limit+offset results and
// slicing off the first offset of them.
func searchHandler(idx *searchindex.Index) router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		q := req.Query()
		query := q["q"]
		if len(query) < minSearchQueryLen {
			return nil, apperror.New(apperror.BadRequest, "q must be at least 2 characters")
		}

		limit := 50
		if v := q["limit"]; v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		offset := 0
		if v := q["offset"]; v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		results := idx.Search(query, q["path"], false, limit+offset)
		if offset >= len(results) {
			results = nil
		} else {
			results = results[offset:]
		}
		if len(results) > limit {
			results = results[:limit]
		}

		out := make([]map[string]interface{}, 0, len(results))
		for _, r := range results {
			entryType := "file"
			if r.IsDir {
				entryType = "directory"
			}
			out = append(out, map[string]interface{}{
				"name":          r.Name,
				"path":          r.Path,
				"size":          r.Size,
				"type":          entryType,
				"score":         r.Score,
				"last_modified": r.Modified.Unix(),
			})
		}
		return writeJSON(http.StatusOK, out)
	}
}

// metricsHandler serves GET /_irondrop/metrics by gathering the process
// registry manually and rendering it with expfmt, since
// internal/router.Handler isn't an http.Handler and so can't mount
// promhttp.Handler() directly.
func metricsHandler() router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		families, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			return nil, apperror.Wrap(apperror.Internal, "gathering metrics", err)
		}

		var buf bytes.Buffer
		enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				return nil, apperror.Wrap(apperror.Internal, "encoding metrics", err)
			}
		}

		resp := httpproto.NewBinary(http.StatusOK, string(expfmt.FmtText), buf.Bytes())
		resp.Headers.Set("Cache-Control", "no-cache")
		return resp, nil
	}
}

func uploadTargetAndAction(base string, req *httpproto.Request) (target, action string) {
	uploadTo := req.Query()["upload_to"]
	target = uploadTo
	action = base
	if uploadTo != "" {
		action = base + "?upload_to=" + uploadTo
	}
	return target, action
}

func uploadFormHandler(basePath string) router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		target, action := uploadTargetAndAction(basePath, req)
		page := assets.UploadFormPage(target, action)
		resp := httpproto.NewText(http.StatusOK, "text/html; charset=utf-8", page)
		resp.Headers.Set("Cache-Control", "no-cache")
		return resp, nil
	}
}

func deprecatedUploadFormHandler() router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		deprecatedUploadWarnOnce.Do(func() {
			logging.Warn("client used deprecated /upload path; prefer /_irondrop/upload")
		})
		return uploadFormHandler("/upload")(req)
	}
}

func uploadHandler(cfg *config.Config, stats *Stats) router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		opts := upload.Options{
			Root:              cfg.Root,
			ConfiguredDir:     cfg.UploadDir,
			RequestedUploadTo: req.Query()["upload_to"],
			MaxUploadSize:     cfg.MaxUploadSize,
			AllowedExtensions: cfg.ExtensionPatterns(),
			Checksum:          cfg.ChecksumOnUpload || req.Query()["checksum"] == "1",
		}
		result, err := upload.Handle(req.Body, req.Headers.Get("content-type"), opts, stats)
		if err != nil {
			return nil, err
		}

		if strings.Contains(req.Headers.Get("accept"), "application/json") || req.Headers.Get("x-requested-with") != "" {
			data, jerr := upload.RenderJSON(result)
			if jerr != nil {
				return nil, apperror.Wrap(apperror.Internal, "encoding upload result", jerr)
			}
			return httpproto.NewBinary(http.StatusOK, "application/json", data), nil
		}
		return httpproto.NewBinary(http.StatusOK, "text/html; charset=utf-8", upload.RenderHTML(result)), nil
	}
}

func deprecatedUploadHandler(cfg *config.Config, stats *Stats) router.Handler {
	return func(req *httpproto.Request) (*httpproto.Response, error) {
		deprecatedUploadWarnOnce.Do(func() {
			logging.Warn("client used deprecated /upload path; prefer /_irondrop/upload")
		})
		return uploadHandler(cfg, stats)(req)
	}
}
