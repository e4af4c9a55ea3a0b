package httpproto

import (
	"io"
	"net"
	"os"
	"testing"
)

func pipeWithRequest(t *testing.T, raw string) net.Conn {
	t.Helper()
	client, server := net.Pipe()
	go func() {
		_, _ = io.WriteString(client, raw)
	}()
	t.Cleanup(func() { client.Close(); server.Close() })
	return server
}

func TestParseSimpleGET(t *testing.T) {
	conn := pipeWithRequest(t, "GET /hello?x=1 HTTP/1.1\r\nHost: example.com\r\n\r\n")
	req, err := Parse(conn, DefaultParseOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Method != "GET" {
		t.Errorf("expected method GET, got %q", req.Method)
	}
	if req.Path != "/hello" {
		t.Errorf("expected path /hello, got %q", req.Path)
	}
	if req.RawQuery != "x=1" {
		t.Errorf("expected raw query x=1, got %q", req.RawQuery)
	}
	if req.Headers.Get("host") != "example.com" {
		t.Errorf("expected host header example.com, got %q", req.Headers.Get("host"))
	}
	if req.Body.Size() != 0 {
		t.Errorf("expected empty body, got size %d", req.Body.Size())
	}
}

func TestParseDuplicateHeadersCommaJoined(t *testing.T) {
	conn := pipeWithRequest(t, "GET / HTTP/1.1\r\nX-Tag: a\r\nX-Tag: b\r\n\r\n")
	req, err := Parse(conn, DefaultParseOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := req.Headers.Get("x-tag"); got != "a, b" {
		t.Errorf("expected comma-joined duplicate headers, got %q", got)
	}
}

func TestParsePercentDecodesPath(t *testing.T) {
	conn := pipeWithRequest(t, "GET /a%20b HTTP/1.1\r\n\r\n")
	req, err := Parse(conn, DefaultParseOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Path != "/a b" {
		t.Errorf("expected decoded path '/a b', got %q", req.Path)
	}
}

func TestParseInvalidPercentSequenceRetainedVerbatim(t *testing.T) {
	conn := pipeWithRequest(t, "GET /a%zzb HTTP/1.1\r\n\r\n")
	req, err := Parse(conn, DefaultParseOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Path != "/a%zzb" {
		t.Errorf("expected invalid percent sequence retained verbatim, got %q", req.Path)
	}
}

func TestParseRejectsMalformedRequestLine(t *testing.T) {
	conn := pipeWithRequest(t, "GET /only-two-tokens\r\n\r\n")
	_, err := Parse(conn, DefaultParseOptions())
	if err == nil {
		t.Fatal("expected error for malformed request line")
	}
}

func TestParseRejectsNonHTTP1Version(t *testing.T) {
	conn := pipeWithRequest(t, "GET / HTTP/2.0\r\n\r\n")
	_, err := Parse(conn, DefaultParseOptions())
	if err == nil {
		t.Fatal("expected error for non-HTTP/1.x version")
	}
}

func TestParseWithBodyInMemory(t *testing.T) {
	body := "hello world"
	raw := "POST /upload HTTP/1.1\r\nContent-Length: 11\r\n\r\n" + body
	conn := pipeWithRequest(t, raw)
	req, err := Parse(conn, DefaultParseOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Body.Size() != int64(len(body)) {
		t.Fatalf("expected body size %d, got %d", len(body), req.Body.Size())
	}
	got := make([]byte, len(body))
	if _, err := io.ReadFull(req.Body, got); err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(got) != body {
		t.Errorf("expected body %q, got %q", body, got)
	}
}

func TestParseRejectsChunkedTransferEncoding(t *testing.T) {
	raw := "POST /upload HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"
	conn := pipeWithRequest(t, raw)
	_, err := Parse(conn, DefaultParseOptions())
	if err == nil {
		t.Fatal("expected error for chunked transfer-encoding")
	}
}

func TestParseRejectsBodyOverMaxSize(t *testing.T) {
	raw := "POST /upload HTTP/1.1\r\nContent-Length: 999999999999\r\n\r\n"
	conn := pipeWithRequest(t, raw)
	opts := DefaultParseOptions()
	opts.MaxBodySize = 1024
	_, err := Parse(conn, opts)
	if err == nil {
		t.Fatal("expected error for body exceeding max size")
	}
}

func TestParseSpillsLargeBodyToTempFile(t *testing.T) {
	body := make([]byte, 200)
	for i := range body {
		body[i] = byte(i)
	}
	raw := "POST /upload HTTP/1.1\r\nContent-Length: 200\r\n\r\n" + string(body)
	conn := pipeWithRequest(t, raw)
	opts := DefaultParseOptions()
	opts.SpillThreshold = 100 // force spill for this small body
	opts.TempDir = t.TempDir()

	req, err := Parse(conn, opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := req.Body.(*fileBody); !ok {
		t.Fatalf("expected body to spill to a temp file, got %T", req.Body)
	}
	got, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("reading spilled body: %v", err)
	}
	if string(got) != string(body) {
		t.Error("spilled body round trip mismatch")
	}
	path := req.Body.(*fileBody).path
	if err := req.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("expected temp file to be removed after Close")
	}
}

func TestQueryParsing(t *testing.T) {
	r := &Request{RawQuery: "q=report&limit=10&empty"}
	q := r.Query()
	if q["q"] != "report" || q["limit"] != "10" {
		t.Errorf("unexpected query map: %v", q)
	}
	if _, ok := q["empty"]; !ok {
		t.Errorf("expected key with no '=' to be present with empty value: %v", q)
	}
}
