// Package httpproto implements the request-serving engine's wire protocol:
// a bounded HTTP/1.1 request parser with disk-spillover body ingestion, and
// response serialization with buffer-size-tiered chunked streaming. It
// replaces net/http's client/server plumbing entirely — grounded on
// original_source/src/http.rs's Request::from_stream /
// read_headers_with_remaining / read_request_body, generalized with a
// memory/disk split the original single-process server didn't need.
package httpproto

import "time"

const (
	// MaxHeadersSize bounds the request-line-plus-headers read (SPEC_FULL.md §4.3).
	MaxHeadersSize = 8 * 1024

	// SpillThreshold is the default Content-Length above which the body is
	// written to a temp file instead of memory. Overridable via
	// [server] spill_threshold in config.
	SpillThreshold = 128 * 1024 * 1024

	// MaxBodySize bounds Content-Length; larger requests get PayloadTooLarge.
	MaxBodySize = 10 * 1024 * 1024 * 1024

	// ReadTimeout bounds a single request read (headers + body).
	ReadTimeout = 30 * time.Second

	headerReadChunk = 8 * 1024
	bodyMemChunk    = 8 * 1024
	bodySpillChunk  = 64 * 1024
)

// Buffer size tiers for chunked response streaming, selected by file size so
// small files don't pay for a 4MB buffer and large ones aren't bottlenecked
// on an 8KB one.
const (
	BufferSizeSmall     = 8 * 1024
	BufferSizeMedium    = 64 * 1024
	BufferSizeLarge     = 1024 * 1024
	BufferSizeVeryLarge = 4 * 1024 * 1024

	smallFileThreshold  = 64 * 1024
	mediumFileThreshold = 1024 * 1024
	largeFileThreshold  = 100 * 1024 * 1024
)

// OptimalBufferSize returns the best streaming buffer size for a file of the
// given size.
func OptimalBufferSize(fileSize int64) int {
	switch {
	case fileSize < smallFileThreshold:
		return BufferSizeSmall
	case fileSize < mediumFileThreshold:
		return BufferSizeMedium
	case fileSize < largeFileThreshold:
		return BufferSizeLarge
	default:
		return BufferSizeVeryLarge
	}
}
