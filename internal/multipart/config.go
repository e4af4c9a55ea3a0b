// Package multipart implements a binary-safe streaming multipart/form-data
// parser (RFC 7578), grounded on original_source/src/multipart.rs's
// MultipartParser/MultipartConfig/PartHeaders, generalized to stream each
// part's body through an io.Reader rather than buffering the whole request
// in memory (SPEC_FULL.md §4.4 "each part exposes ... a fixed-buffer
// streaming interface so handlers can write large parts straight to disk").
package multipart

const (
	DefaultMaxParts            = 100
	DefaultMaxFilenameLength   = 255
	DefaultMaxFieldNameLength  = 100
	DefaultMaxPartHeadersSize  = 8 * 1024
	MinBoundaryLength          = 1
	MaxBoundaryLength          = 70
)

// Config bounds a parse per SPEC_FULL.md §4.4.
type Config struct {
	MaxParts           int
	MaxPartSize        int64
	MaxFilenameLength  int
	MaxFieldNameLength int
	MaxPartHeadersSize int
	AllowedExtensions  []string // glob patterns, e.g. "*.zip"
	AllowedMIMETypes   []string
}

// DefaultConfig returns SPEC_FULL.md §4.4's defaults. MaxPartSize defaults
// to the caller's configured max upload size, not a fixed constant, so it
// is left at 0 (unlimited) here — callers (internal/upload) set it.
func DefaultConfig() Config {
	return Config{
		MaxParts:           DefaultMaxParts,
		MaxFilenameLength:  DefaultMaxFilenameLength,
		MaxFieldNameLength: DefaultMaxFieldNameLength,
		MaxPartHeadersSize: DefaultMaxPartHeadersSize,
	}
}
