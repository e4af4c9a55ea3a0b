package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		HTTPRequestDuration,
		HTTPRequestsTotal,
		BytesServedTotal,
		RateLimitedRequests,
		UploadDuration,
		UploadSize,
		UploadsTotal,
		ActiveUploads,
	}
	for _, c := range collectors {
		if c == nil {
			t.Error("found nil metric collector")
		}
	}
}

func TestRecordRequest(t *testing.T) {
	RecordRequest("GET", "/report.txt", 200, 0.05, 4096)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/report.txt", "2xx"))
	if count < 1 {
		t.Errorf("expected HTTPRequestsTotal >= 1, got %f", count)
	}
	bytes := testutil.ToFloat64(BytesServedTotal)
	if bytes < 4096 {
		t.Errorf("expected BytesServedTotal >= 4096, got %f", bytes)
	}
}

func TestStatusLabelFor(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 301: "3xx", 404: "4xx", 500: "5xx", 503: "5xx"}
	for status, want := range cases {
		if got := statusLabelFor(status); got != want {
			t.Errorf("statusLabelFor(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestRecordRateLimit(t *testing.T) {
	RecordRateLimit("203.0.113.9")
	count := testutil.ToFloat64(RateLimitedRequests.WithLabelValues("203.0.113.9"))
	if count < 1 {
		t.Errorf("expected RateLimitedRequests >= 1, got %f", count)
	}
}

func TestRecordUpload(t *testing.T) {
	RecordUpload(".zip", 2048, 1.5, true)
	count := testutil.ToFloat64(UploadsTotal.WithLabelValues(".zip", "success"))
	if count < 1 {
		t.Errorf("expected UploadsTotal success >= 1, got %f", count)
	}

	RecordUpload("", 0, 0, false)
	errCount := testutil.ToFloat64(UploadsTotal.WithLabelValues("none", "error"))
	if errCount < 1 {
		t.Errorf("expected UploadsTotal error >= 1 for extensionless upload, got %f", errCount)
	}
}

func TestActiveUploadsGauge(t *testing.T) {
	ActiveUploads.Inc()
	if v := testutil.ToFloat64(ActiveUploads); v < 1 {
		t.Errorf("expected ActiveUploads >= 1, got %f", v)
	}
	ActiveUploads.Dec()
}
