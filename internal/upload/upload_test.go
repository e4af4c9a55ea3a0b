package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const uploadTestBoundary = "UPLOAD-BOUNDARY"

func buildUploadBody(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--" + uploadTestBoundary + "\r\n")
		b.WriteString(p)
	}
	b.WriteString("--" + uploadTestBoundary + "--\r\n")
	return b.String()
}

type recordingStats struct {
	started  int
	finished int
	lastOK   bool
	lastN    int
	lastSize int64
}

func (r *recordingStats) UploadStarted() { r.started++ }
func (r *recordingStats) UploadFinished(success bool, files int, bytes int64, largest int64, durationMS int64) {
	r.finished++
	r.lastOK = success
	r.lastN = files
	r.lastSize = bytes
}

func contentType() string {
	return "multipart/form-data; boundary=" + uploadTestBoundary
}

func TestHandleWritesSingleFile(t *testing.T) {
	dir := t.TempDir()
	body := buildUploadBody(
		"Content-Disposition: form-data; name=\"file\"; filename=\"notes.txt\"\r\nContent-Type: text/plain\r\n\r\nhello world\r\n",
	)
	stats := &recordingStats{}
	result, err := Handle(strings.NewReader(body), contentType(), Options{Root: dir, ConfiguredDir: dir, MaxUploadSize: 1 << 20}, stats)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Name != "notes.txt" || result.Files[0].Size != int64(len("hello world")) {
		t.Fatalf("unexpected result: %+v", result.Files)
	}
	data, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected file contents hello world, got %q", data)
	}
	if stats.started != 1 || stats.finished != 1 || !stats.lastOK {
		t.Errorf("expected stats recorded success, got %+v", stats)
	}
}

func TestHandleSkipsNonFileFields(t *testing.T) {
	dir := t.TempDir()
	body := buildUploadBody(
		"Content-Disposition: form-data; name=\"description\"\r\n\r\nignored field value\r\n",
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.bin\"\r\n\r\nbinary-data\r\n",
	)
	result, err := Handle(strings.NewReader(body), contentType(), Options{Root: dir, ConfiguredDir: dir, MaxUploadSize: 1 << 20}, nil)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Name != "a.bin" {
		t.Fatalf("expected only a.bin recorded, got %+v", result.Files)
	}
}

func TestHandleMultipleFilesConflictResolution(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dup.txt"), []byte("existing"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	body := buildUploadBody(
		"Content-Disposition: form-data; name=\"file\"; filename=\"dup.txt\"\r\n\r\nnew-content\r\n",
	)
	result, err := Handle(strings.NewReader(body), contentType(), Options{Root: dir, ConfiguredDir: dir, MaxUploadSize: 1 << 20}, nil)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !result.Files[0].Renamed || result.Files[0].Name != "dup_1.txt" {
		t.Errorf("expected conflict resolved to dup_1.txt, got %+v", result.Files[0])
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected one rename warning, got %+v", result.Warnings)
	}
}

func TestHandleComputesChecksumWhenRequested(t *testing.T) {
	dir := t.TempDir()
	body := buildUploadBody(
		"Content-Disposition: form-data; name=\"file\"; filename=\"c.txt\"\r\n\r\nchecksum-me\r\n",
	)
	result, err := Handle(strings.NewReader(body), contentType(), Options{Root: dir, ConfiguredDir: dir, MaxUploadSize: 1 << 20, Checksum: true}, nil)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Files[0].Checksum == "" {
		t.Error("expected non-empty checksum when Checksum option is set")
	}
}

func TestHandleRejectsNoFileParts(t *testing.T) {
	dir := t.TempDir()
	body := buildUploadBody(
		"Content-Disposition: form-data; name=\"description\"\r\n\r\nno files here\r\n",
	)
	if _, err := Handle(strings.NewReader(body), contentType(), Options{Root: dir, ConfiguredDir: dir, MaxUploadSize: 1 << 20}, nil); err == nil {
		t.Fatal("expected error when no file parts are present")
	}
}

func TestHandleRejectsWrongContentType(t *testing.T) {
	dir := t.TempDir()
	if _, err := Handle(strings.NewReader(""), "application/json", Options{Root: dir, ConfiguredDir: dir}, nil); err == nil {
		t.Fatal("expected error for non-multipart content type")
	}
}

func TestHandleRejectsDisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	body := buildUploadBody(
		"Content-Disposition: form-data; name=\"file\"; filename=\"virus.exe\"\r\n\r\ndata\r\n",
	)
	opts := Options{Root: dir, ConfiguredDir: dir, MaxUploadSize: 1 << 20, AllowedExtensions: []string{"*.txt"}}
	stats := &recordingStats{}
	if _, err := Handle(strings.NewReader(body), contentType(), opts, stats); err == nil {
		t.Fatal("expected error for disallowed extension")
	}
	if stats.finished != 1 || stats.lastOK {
		t.Errorf("expected failure recorded in stats, got %+v", stats)
	}
}

func TestHandleRejectsUploadToEscapingRoot(t *testing.T) {
	dir := t.TempDir()
	body := buildUploadBody(
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n\r\ndata\r\n",
	)
	opts := Options{Root: dir, RequestedUploadTo: "../../etc", MaxUploadSize: 1 << 20}
	if _, err := Handle(strings.NewReader(body), contentType(), opts, nil); err == nil {
		t.Fatal("expected error for upload_to escaping served root")
	}
}
