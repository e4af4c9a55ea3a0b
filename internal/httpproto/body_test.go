package httpproto

import (
	"io"
	"os"
	"testing"
)

func TestMemBodyRoundTrip(t *testing.T) {
	b := newMemBody([]byte("payload"))
	if b.Size() != 7 {
		t.Fatalf("expected size 7, got %d", b.Size())
	}
	got, err := io.ReadAll(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "payload" {
		t.Errorf("expected 'payload', got %q", got)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close should be a no-op: %v", err)
	}
}

func TestEmptyBodyReadsEOF(t *testing.T) {
	var b emptyBody
	buf := make([]byte, 10)
	n, err := b.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("expected (0, EOF), got (%d, %v)", n, err)
	}
	if b.Size() != 0 {
		t.Errorf("expected size 0, got %d", b.Size())
	}
}

func TestFileBodyCloseRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/spill.tmp"
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("data"); err != nil {
		t.Fatal(err)
	}
	f.Seek(0, io.SeekStart)

	b := &fileBody{f: f, path: path, size: 4}
	got, err := io.ReadAll(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Errorf("expected 'data', got %q", got)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected temp file to be removed after Close")
	}
}
