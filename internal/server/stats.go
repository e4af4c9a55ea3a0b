// Package server implements IronDrop's accept loop, worker pool, request
// statistics, and built-in routes — SPEC_FULL.md §4.7's C7, the component
// that wires the parser (C3), multipart/upload pipeline (C4/C5), router
// (C6), rate limiter (C1), and search index (C2) into a running process.
// Grounded on original_source/src/server.rs's ServerStats/UploadStats,
// ThreadPool/Worker, and run_server.
package server

import (
	"sync"
	"time"
)

// ServiceVersion is reported in the /_irondrop/health and /_irondrop/status
// bodies.
const ServiceVersion = "2.5.0"

// Features lists the capability tags advertised in /_irondrop/health and
// /_irondrop/status, mirroring original_source/src/handlers.rs's health
// response.
var Features = []string{
	"rate_limiting",
	"statistics",
	"native_mime_detection",
	"enhanced_security",
	"beautiful_ui",
	"http11_compliance",
	"request_timeouts",
	"panic_recovery",
}

// maxProcessingTimes bounds the upload processing-time history kept for the
// average_processing_ms figure; the oldest sample is evicted once this is
// exceeded, matching original_source/src/server.rs's ring behavior.
const maxProcessingTimes = 100

// Stats accumulates request and upload counters for the lifetime of one
// server process. All methods are safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	startTime time.Time

	totalRequests      uint64
	successfulRequests uint64
	errorRequests      uint64
	bytesServed        uint64

	totalUploads      uint64
	successfulUploads uint64
	failedUploads     uint64
	filesUploaded     uint64
	uploadBytes       uint64
	largestUpload     uint64
	concurrentUploads uint64
	processingTimesMS []int64
}

// NewStats returns a Stats with its uptime clock started now.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// RecordRequest records one completed HTTP request: whether it succeeded
// (status < 400) and how many body bytes were written to the connection.
func (s *Stats) RecordRequest(success bool, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
	if success {
		s.successfulRequests++
	} else {
		s.errorRequests++
	}
	if bytes > 0 {
		s.bytesServed += uint64(bytes)
	}
}

// UploadStarted implements upload.StatsRecorder: marks one upload as
// in-flight.
func (s *Stats) UploadStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concurrentUploads++
}

// UploadFinished implements upload.StatsRecorder. Unlike the Rust
// original's three separate calls (start/record/finish), upload.Handle
// calls UploadStarted once and, via a single deferred call, UploadFinished
// once — so this both records the outcome and releases the concurrency slot
// claimed by UploadStarted, in the same call.
func (s *Stats) UploadFinished(success bool, files int, bytes int64, largest int64, durationMS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.concurrentUploads > 0 {
		s.concurrentUploads--
	}

	s.totalUploads++
	if success {
		s.successfulUploads++
	} else {
		s.failedUploads++
	}
	if files > 0 {
		s.filesUploaded += uint64(files)
	}
	if bytes > 0 {
		s.uploadBytes += uint64(bytes)
	}
	if largest > 0 && uint64(largest) > s.largestUpload {
		s.largestUpload = uint64(largest)
	}

	s.processingTimesMS = append(s.processingTimesMS, durationMS)
	if len(s.processingTimesMS) > maxProcessingTimes {
		s.processingTimesMS = s.processingTimesMS[1:]
	}
}

// RequestSnapshot is a point-in-time copy of the request counters, safe to
// render without holding Stats' lock.
type RequestSnapshot struct {
	TotalRequests      uint64
	SuccessfulRequests uint64
	ErrorRequests      uint64
	BytesServed        uint64
	Uptime             time.Duration
}

// RequestSnapshot returns the current request counters.
func (s *Stats) RequestSnapshot() RequestSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RequestSnapshot{
		TotalRequests:      s.totalRequests,
		SuccessfulRequests: s.successfulRequests,
		ErrorRequests:      s.errorRequests,
		BytesServed:        s.bytesServed,
		Uptime:             time.Since(s.startTime),
	}
}

// UploadSnapshot is a point-in-time copy of the upload counters plus their
// derived figures (average size, average processing time, success rate),
// computed once under the lock rather than recomputed by every caller.
type UploadSnapshot struct {
	TotalUploads       uint64
	SuccessfulUploads  uint64
	FailedUploads      uint64
	FilesUploaded      uint64
	UploadBytes        uint64
	LargestUpload      uint64
	ConcurrentUploads  uint64
	AverageUploadSize  float64
	AverageProcessing  float64
	SuccessRate        float64
}

// UploadSnapshot returns the current upload counters and their derived
// figures, per original_source/src/server.rs's UploadStats::get_stats.
func (s *Stats) UploadSnapshot() UploadSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := UploadSnapshot{
		TotalUploads:      s.totalUploads,
		SuccessfulUploads: s.successfulUploads,
		FailedUploads:     s.failedUploads,
		FilesUploaded:     s.filesUploaded,
		UploadBytes:       s.uploadBytes,
		LargestUpload:     s.largestUpload,
		ConcurrentUploads: s.concurrentUploads,
	}

	if s.filesUploaded > 0 {
		snap.AverageUploadSize = float64(s.uploadBytes) / float64(s.filesUploaded)
	}
	if n := len(s.processingTimesMS); n > 0 {
		var sum int64
		for _, t := range s.processingTimesMS {
			sum += t
		}
		snap.AverageProcessing = float64(sum) / float64(n)
	}
	if s.totalUploads > 0 {
		snap.SuccessRate = float64(s.successfulUploads) / float64(s.totalUploads) * 100
	}

	return snap
}
