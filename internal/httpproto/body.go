package httpproto

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// Body is the uniform sequential-read interface over a request body,
// regardless of whether it's backed by memory or a spilled temp file
// (SPEC_FULL.md §3 invariant: downstream parsers are agnostic to backing).
type Body interface {
	io.Reader
	io.Closer
	Size() int64
}

// emptyBody is used when a request has no body.
type emptyBody struct{}

func (emptyBody) Read([]byte) (int, error) { return 0, io.EOF }
func (emptyBody) Close() error              { return nil }
func (emptyBody) Size() int64               { return 0 }

// memBody is an in-memory body for Content-Length <= SpillThreshold.
type memBody struct {
	r    *bytes.Reader
	size int64
}

func newMemBody(data []byte) *memBody {
	return &memBody{r: bytes.NewReader(data), size: int64(len(data))}
}

func (b *memBody) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *memBody) Close() error                { return nil }
func (b *memBody) Size() int64                 { return b.size }

// fileBody is a disk-spilled body for Content-Length > SpillThreshold. Close
// deletes the temp file, satisfying the "dropping the request deletes the
// temp file" lifecycle invariant.
type fileBody struct {
	f    *os.File
	path string
	size int64
}

func (b *fileBody) Read(p []byte) (int, error) { return b.f.Read(p) }
func (b *fileBody) Size() int64                 { return b.size }

func (b *fileBody) Close() error {
	closeErr := b.f.Close()
	removeErr := os.Remove(b.path)
	if closeErr != nil {
		return closeErr
	}
	return removeErr
}

// readBody implements SPEC_FULL.md §4.3's body-read contract: reject
// chunked transfer-encoding, parse Content-Length, reject bodies over
// MaxBodySize, and split between an in-memory buffer and a spilled temp
// file at SpillThreshold.
func readBody(conn net.Conn, headers Header, leftover []byte, opts ParseOptions) (Body, error) {
	if te := headers.Get("transfer-encoding"); strings.Contains(strings.ToLower(te), "chunked") {
		return nil, apperror.New(apperror.BadRequest, "chunked transfer-encoding not supported")
	}

	clStr := headers.Get("content-length")
	if clStr == "" {
		return emptyBody{}, nil
	}

	contentLength, err := strconv.ParseInt(clStr, 10, 64)
	if err != nil || contentLength < 0 {
		return nil, apperror.New(apperror.BadRequest, "malformed content-length")
	}
	if contentLength == 0 {
		return emptyBody{}, nil
	}
	if contentLength > opts.MaxBodySize {
		return nil, apperror.TooLarge("request body exceeds maximum size", opts.MaxBodySize)
	}

	spillThreshold := opts.SpillThreshold
	if spillThreshold <= 0 {
		spillThreshold = SpillThreshold
	}

	if contentLength <= spillThreshold {
		return readBodyToMemory(conn, leftover, contentLength)
	}
	return readBodyToTempFile(conn, leftover, contentLength, opts.TempDir)
}

func readBodyToMemory(conn net.Conn, leftover []byte, contentLength int64) (Body, error) {
	buf := make([]byte, contentLength)
	n := copy(buf, leftover)

	for int64(n) < contentLength {
		chunkEnd := int64(n) + bodyMemChunk
		if chunkEnd > contentLength {
			chunkEnd = contentLength
		}
		read, err := conn.Read(buf[n:chunkEnd])
		if read > 0 {
			n += read
		}
		if err != nil {
			if err == io.EOF && int64(n) == contentLength {
				break
			}
			return nil, apperror.Wrap(apperror.BadRequest, "failed reading request body", err)
		}
	}
	if int64(n) != contentLength {
		return nil, apperror.New(apperror.BadRequest, "short read on request body")
	}
	return newMemBody(buf), nil
}

func readBodyToTempFile(conn net.Conn, leftover []byte, contentLength int64, tempDir string) (Body, error) {
	name, err := tempFileName()
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "generating temp file name", err)
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	path := filepath.Join(tempDir, name)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "creating spill file", err)
	}

	var written int64
	if len(leftover) > 0 {
		m, werr := f.Write(leftover)
		written += int64(m)
		if werr != nil {
			f.Close()
			os.Remove(path)
			return nil, apperror.Wrap(apperror.Internal, "writing spill file", werr)
		}
	}

	buf := make([]byte, bodySpillChunk)
	for written < contentLength {
		toRead := contentLength - written
		if toRead > int64(len(buf)) {
			toRead = int64(len(buf))
		}
		n, err := conn.Read(buf[:toRead])
		if n > 0 {
			m, werr := f.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				f.Close()
				os.Remove(path)
				return nil, apperror.Wrap(apperror.Internal, "writing spill file", werr)
			}
		}
		if err != nil {
			if err == io.EOF && written == contentLength {
				break
			}
			f.Close()
			os.Remove(path)
			return nil, apperror.Wrap(apperror.BadRequest, "failed reading request body", err)
		}
	}

	if written != contentLength {
		f.Close()
		os.Remove(path)
		return nil, apperror.New(apperror.BadRequest, "short read on request body")
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, apperror.Wrap(apperror.Internal, "fsync spill file", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(path)
		return nil, apperror.Wrap(apperror.Internal, "rewinding spill file", err)
	}

	return &fileBody{f: f, path: path, size: contentLength}, nil
}

func tempFileName() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("irondrop-body-%s.tmp", hex.EncodeToString(buf[:])), nil
}
