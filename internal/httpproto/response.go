package httpproto

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

// BodyKind discriminates the three response body shapes SPEC_FULL.md §3
// defines.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyText
	BodyBinary
	BodyStream
)

// FileDetails is a download stream's lifetime-bound handle: an open file,
// its total size, and the streaming chunk size to use.
type FileDetails struct {
	Reader    io.ReadSeekCloser
	Size      int64
	ChunkSize int
}

// Response is one outgoing HTTP response, serialized by the server's
// per-connection handler.
type Response struct {
	Status  int
	Headers http.Header

	Kind   BodyKind
	Text   string
	Binary []byte
	Stream *FileDetails

	// Gzip requests the body be gzip-compressed before writing, only valid
	// for BodyText/BodyBinary (SPEC_FULL.md §4.3 "optional gzip" — never
	// applied to BodyStream so Range and resumable downloads stay correct).
	Gzip bool
}

// NewText builds a response with a text body; Content-Type is set only when
// contentType is non-empty.
func NewText(status int, contentType, body string) *Response {
	r := &Response{Status: status, Kind: BodyText, Text: body, Headers: make(http.Header)}
	if contentType != "" {
		r.Headers.Set("Content-Type", contentType)
	}
	return r
}

// NewBinary builds a response carrying a fixed in-memory byte body.
func NewBinary(status int, contentType string, body []byte) *Response {
	r := &Response{Status: status, Kind: BodyBinary, Binary: body, Headers: make(http.Header)}
	if contentType != "" {
		r.Headers.Set("Content-Type", contentType)
	}
	return r
}

// NewStream builds a response that streams a file body.
func NewStream(status int, contentType string, fd *FileDetails) *Response {
	r := &Response{Status: status, Kind: BodyStream, Stream: fd, Headers: make(http.Header)}
	if contentType != "" {
		r.Headers.Set("Content-Type", contentType)
	}
	return r
}

// Write serializes the response to conn: status line, headers (always
// including Server/Connection/Content-Length), then the body. It returns the
// number of body bytes written (excluding headers), matching the stats
// recorder's contract.
func (r *Response) Write(conn net.Conn) (int64, error) {
	bw := bufio.NewWriter(conn)

	body, contentLength, err := r.renderBody()
	if err != nil {
		return 0, err
	}

	reason := http.StatusText(r.Status)
	if reason == "" {
		reason = "Unknown"
	}
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", r.Status, reason); err != nil {
		return 0, err
	}

	r.Headers.Set("Server", "irondrop")
	r.Headers.Set("Connection", "close")
	r.Headers.Set("Content-Length", strconv.FormatInt(contentLength, 10))

	for key, values := range r.Headers {
		for _, v := range values {
			if _, err := fmt.Fprintf(bw, "%s: %s\r\n", key, v); err != nil {
				return 0, err
			}
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return 0, err
	}

	var written int64
	if r.Kind == BodyStream {
		if err := bw.Flush(); err != nil {
			return 0, err
		}
		written, err = r.streamFile(conn)
		if err != nil {
			return written, err
		}
	} else if body != nil {
		n, err := bw.Write(body)
		written = int64(n)
		if err != nil {
			return written, err
		}
		if err := bw.Flush(); err != nil {
			return written, err
		}
	} else if err := bw.Flush(); err != nil {
		return 0, err
	}

	return written, nil
}

// renderBody returns the bytes to write for non-stream bodies (optionally
// gzip-compressed) and their length. Stream bodies report their known size
// but are written separately by streamFile.
func (r *Response) renderBody() ([]byte, int64, error) {
	switch r.Kind {
	case BodyNone:
		return nil, 0, nil
	case BodyText:
		return r.maybeGzip([]byte(r.Text))
	case BodyBinary:
		return r.maybeGzip(r.Binary)
	case BodyStream:
		if r.Stream == nil {
			return nil, 0, nil
		}
		return nil, r.Stream.Size, nil
	default:
		return nil, 0, nil
	}
}

func (r *Response) maybeGzip(data []byte) ([]byte, int64, error) {
	if !r.Gzip {
		return data, int64(len(data)), nil
	}
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, 0, err
	}
	if err := gw.Close(); err != nil {
		return nil, 0, err
	}
	r.Headers.Set("Content-Encoding", "gzip")
	return buf.Bytes(), int64(buf.Len()), nil
}


// streamFile copies the file body to conn in chunks of the configured
// chunk size, returning the number of bytes written.
func (r *Response) streamFile(conn net.Conn) (int64, error) {
	fd := r.Stream
	chunkSize := fd.ChunkSize
	if chunkSize <= 0 {
		chunkSize = OptimalBufferSize(fd.Size)
	}
	buf := make([]byte, chunkSize)

	var written int64
	for {
		n, readErr := fd.Reader.Read(buf)
		if n > 0 {
			m, writeErr := conn.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, writeErr
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return written, readErr
		}
	}
	return written, nil
}
