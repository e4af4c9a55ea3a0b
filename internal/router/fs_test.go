package router

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dev-harsh1998/irondrop/internal/httpproto"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestResolveServedPathJoinsRoot(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "report.txt", "hello")
	p, err := resolveServedPath(root, "/report.txt")
	if err != nil {
		t.Fatalf("resolveServedPath: %v", err)
	}
	if filepath.Base(p) != "report.txt" {
		t.Errorf("expected report.txt, got %q", p)
	}
}

func TestResolveServedPathRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	if _, err := resolveServedPath(root, "/../../../etc/passwd"); err == nil {
		t.Error("expected traversal to be rejected")
	}
}

func TestFSHandlerRejectsPost(t *testing.T) {
	root := t.TempDir()
	h := FSHandler(FSConfig{Root: root})
	_, err := h(&httpproto.Request{Method: "POST", Path: "/"})
	if err == nil {
		t.Error("expected POST to be rejected")
	}
}

func TestFSHandlerServesFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "hello.txt", "hello world")
	h := FSHandler(FSConfig{Root: root, ChunkSize: 4096})
	resp, err := h(&httpproto.Request{Method: "GET", Path: "/hello.txt", Headers: make(httpproto.Header)})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("expected 200, got %d", resp.Status)
	}
	if resp.Kind != httpproto.BodyStream {
		t.Fatalf("expected stream body")
	}
	data, rerr := io.ReadAll(resp.Stream.Reader)
	if rerr != nil {
		t.Fatalf("ReadAll: %v", rerr)
	}
	if string(data) != "hello world" {
		t.Errorf("expected hello world, got %q", data)
	}
}

func TestFSHandlerRejectsDisallowedExtension(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "payload.exe", "binary")
	h := FSHandler(FSConfig{Root: root, AllowedExtensions: []string{"*.txt"}})
	_, err := h(&httpproto.Request{Method: "GET", Path: "/payload.exe", Headers: make(httpproto.Header)})
	if err == nil {
		t.Error("expected disallowed extension to be rejected")
	}
}

func TestFSHandlerRejectsTraversalInPath(t *testing.T) {
	root := t.TempDir()
	h := FSHandler(FSConfig{Root: root})
	_, err := h(&httpproto.Request{Method: "GET", Path: "/../outside.txt", Headers: make(httpproto.Header)})
	if err == nil {
		t.Error("expected traversal path to be rejected")
	}
}

func TestFSHandlerRendersDirectoryListing(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.txt", "a")
	writeTestFile(t, root, "b.txt", "b")
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	h := FSHandler(FSConfig{Root: root})
	resp, err := h(&httpproto.Request{Method: "GET", Path: "/", Headers: make(httpproto.Header)})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !strings.Contains(resp.Text, "a.txt") || !strings.Contains(resp.Text, "sub/") {
		t.Errorf("expected listing to mention entries, got %q", resp.Text)
	}
}

func TestFSHandlerHidesDotfiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, ".hidden", "secret")
	writeTestFile(t, root, "visible.txt", "v")
	h := FSHandler(FSConfig{Root: root})
	resp, err := h(&httpproto.Request{Method: "GET", Path: "/", Headers: make(httpproto.Header)})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if strings.Contains(resp.Text, ".hidden") {
		t.Error("expected dotfile to be hidden from listing")
	}
}

func TestServeFileFullRangeStart(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "range.txt", "0123456789")
	h := FSHandler(FSConfig{Root: root, ChunkSize: 4096})
	req := &httpproto.Request{Method: "GET", Path: "/range.txt", Headers: httpproto.Header{"range": "bytes=2-5"}}
	resp, err := h(req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if resp.Status != 206 {
		t.Errorf("expected 206, got %d", resp.Status)
	}
	data, _ := io.ReadAll(resp.Stream.Reader)
	if string(data) != "2345" {
		t.Errorf("expected 2345, got %q", data)
	}
	if got := resp.Headers.Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("expected Content-Range bytes 2-5/10, got %q", got)
	}
}

func TestServeFileOpenEndedRange(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "range.txt", "0123456789")
	h := FSHandler(FSConfig{Root: root, ChunkSize: 4096})
	req := &httpproto.Request{Method: "GET", Path: "/range.txt", Headers: httpproto.Header{"range": "bytes=7-"}}
	resp, err := h(req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	data, _ := io.ReadAll(resp.Stream.Reader)
	if string(data) != "789" {
		t.Errorf("expected 789, got %q", data)
	}
}

func TestServeFileSuffixRange(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "range.txt", "0123456789")
	h := FSHandler(FSConfig{Root: root, ChunkSize: 4096})
	req := &httpproto.Request{Method: "GET", Path: "/range.txt", Headers: httpproto.Header{"range": "bytes=-3"}}
	resp, err := h(req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	data, _ := io.ReadAll(resp.Stream.Reader)
	if string(data) != "789" {
		t.Errorf("expected last 3 bytes 789, got %q", data)
	}
}

func TestServeFileRejectsMultiRange(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "range.txt", "0123456789")
	h := FSHandler(FSConfig{Root: root, ChunkSize: 4096})
	req := &httpproto.Request{Method: "GET", Path: "/range.txt", Headers: httpproto.Header{"range": "bytes=0-1,3-4"}}
	if _, err := h(req); err == nil {
		t.Error("expected multi-range request to be rejected")
	}
}

func TestServeFileRejectsOutOfBoundsRange(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "range.txt", "0123456789")
	h := FSHandler(FSConfig{Root: root, ChunkSize: 4096})
	req := &httpproto.Request{Method: "GET", Path: "/range.txt", Headers: httpproto.Header{"range": "bytes=50-60"}}
	if _, err := h(req); err == nil {
		t.Error("expected out-of-bounds range to be rejected")
	}
}

func TestFormatSizeUnits(t *testing.T) {
	cases := map[int64]string{
		500:     "500 B",
		2048:    "2.0 KiB",
		5 << 20: "5.0 MiB",
	}
	for n, want := range cases {
		if got := formatSize(n); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", n, got, want)
		}
	}
}
