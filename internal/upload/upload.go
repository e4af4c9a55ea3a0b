// Package upload implements SPEC_FULL.md §4.5's upload pipeline: target
// directory resolution, a write probe, streaming multipart ingestion with
// atomic temp-then-rename writes, filename conflict resolution, and
// optional per-file checksums. Grounded on
// _examples/zulfikawr-warp/internal/server/upload.go's handleUpload and its
// sibling sanitize.go/cache.go helpers, generalized to use the module's own
// internal/multipart parser instead of net/http's MultipartReader.
package upload

import (
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
	"github.com/dev-harsh1998/irondrop/internal/logging"
	"github.com/dev-harsh1998/irondrop/internal/multipart"
	"go.uber.org/zap"
)

// StatsRecorder receives upload outcomes so the server's stats snapshot
// (C7) can report them without this package depending on the server
// package.
type StatsRecorder interface {
	UploadStarted()
	UploadFinished(success bool, files int, bytes int64, largest int64, durationMS int64)
}

type noopStats struct{}

func (noopStats) UploadStarted()                                {}
func (noopStats) UploadFinished(bool, int, int64, int64, int64) {}

// Options configures one call to Handle, assembled by the router from the
// server's loaded configuration and the request's query parameters.
type Options struct {
	Root              string
	ConfiguredDir     string
	RequestedUploadTo string
	MaxUploadSize     int64
	AllowedExtensions []string
	Checksum          bool
}

// Handle runs the full pipeline over one multipart/form-data body and
// returns the assembled Result, or an *apperror.Error on any failure.
func Handle(body io.Reader, contentType string, opts Options, stats StatsRecorder) (*Result, error) {
	if stats == nil {
		stats = noopStats{}
	}

	boundary, err := multipart.ExtractBoundary(contentType)
	if err != nil {
		return nil, err
	}

	dir, err := resolveTargetDir(opts.Root, opts.RequestedUploadTo, opts.ConfiguredDir)
	if err != nil {
		return nil, err
	}
	if err := probeWritable(dir); err != nil {
		return nil, err
	}

	cfg := multipart.DefaultConfig()
	cfg.MaxPartSize = opts.MaxUploadSize
	cfg.AllowedExtensions = opts.AllowedExtensions

	parser, err := multipart.New(body, boundary, cfg)
	if err != nil {
		return nil, err
	}

	stats.UploadStarted()
	start := time.Now()

	var result Result
	var largest int64
	success := false
	defer func() {
		durationMS := time.Since(start).Milliseconds()
		stats.UploadFinished(success, len(result.Files), result.TotalBytes, largest, durationMS)
		logging.Debug("upload finished",
			zap.Bool("success", success), zap.Int("files", len(result.Files)),
			zap.Int64("bytes", result.TotalBytes), zap.Int64("duration_ms", durationMS))
	}()

	for {
		part, err := parser.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !part.IsFile() {
			if err := part.Discard(); err != nil {
				return nil, err
			}
			continue
		}

		finalPath, renamed, err := resolveConflict(dir, part.Filename)
		if err != nil {
			return nil, err
		}

		written, err := writeAtomic(dir, finalPath, part, opts.MaxUploadSize)
		if err != nil {
			return nil, err
		}

		uf := UploadedFile{Name: filepath.Base(finalPath), Size: written, Renamed: renamed, ContentType: mimeTypeFor(finalPath)}
		if opts.Checksum {
			sum, err := computeChecksum(finalPath)
			if err != nil {
				return nil, err
			}
			uf.Checksum = sum
		}
		if renamed {
			result.Warnings = append(result.Warnings, "renamed "+part.Filename+" to "+uf.Name+" to avoid overwriting an existing file")
		}
		result.Files = append(result.Files, uf)
		result.TotalBytes += written
		if written > largest {
			largest = written
		}
	}

	if len(result.Files) == 0 {
		return nil, apperror.New(apperror.BadRequest, "no file provided")
	}

	result.ProcessingMS = time.Since(start).Milliseconds()
	success = true
	return &result, nil
}

// mimeTypeFor resolves a MIME type from a filename's extension, used when
// building informational headers/response fields; detection failures fall
// back to a generic octet-stream type rather than erroring the upload.
func mimeTypeFor(name string) string {
	t := mime.TypeByExtension(filepath.Ext(name))
	if t == "" {
		return "application/octet-stream"
	}
	return t
}
