package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload metrics describe the pipeline internal/upload.Handle runs for each
// multipart/form-data request (SPEC_FULL.md §4.5), labeled by file
// extension so slow or oversized file types are easy to spot. Nothing in
// internal/upload or internal/server calls RecordUpload or moves
// ActiveUploads, so these series stay empty in a running server.

var (
	// UploadDuration tracks upload processing time.
	// Labels: file_ext (e.g., ".txt", ".zip").
	UploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "irondrop_upload_duration_seconds",
			Help:    "Upload processing duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
		},
		[]string{"file_ext"},
	)

	// UploadSize tracks uploaded file sizes in bytes.
	// Labels: file_ext.
	UploadSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "irondrop_upload_size_bytes",
			Help:    "Upload size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 20), // 1KB to ~1GB
		},
		[]string{"file_ext"},
	)

	// UploadsTotal counts uploads by extension and outcome.
	// Labels: file_ext, status (success, error).
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irondrop_uploads_total",
			Help: "Total number of uploads",
		},
		[]string{"file_ext", "status"},
	)

	// ActiveUploads is a gauge for uploads currently in progress; the
	// figure the server maintains is Stats' concurrent upload count.
	ActiveUploads = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "irondrop_active_uploads",
			Help: "Number of active uploads",
		},
	)
)

// RecordUpload records one finished part write: its extension, size, and
// whether the surrounding request ultimately succeeded.
func RecordUpload(ext string, size int64, durationSeconds float64, success bool) {
	if ext == "" {
		ext = "none"
	}
	status := "error"
	if success {
		status = "success"
	}
	UploadDuration.WithLabelValues(ext).Observe(durationSeconds)
	UploadSize.WithLabelValues(ext).Observe(float64(size))
	UploadsTotal.WithLabelValues(ext, status).Inc()
}
