package multipart

import (
	"bytes"
	"io"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

const rawChunkSize = 4096

// rawStream incrementally pulls bytes from an upstream io.Reader into a
// buffer and locates boundary markers within it, per SPEC_FULL.md §4.4's
// parse loop: "internal byte buffer, fed in 4 KiB chunks from upstream
// reader". It is shared by the Parser and every Part it hands out,
// so only one part body is ever "live" at a time — matching the contract
// that parts are delivered one at a time.
type rawStream struct {
	src   io.Reader
	delim []byte // "--" + boundary
	buf   []byte
	eof   bool

	pastFirst bool // set once the first boundary line has been consumed
}

func newRawStream(src io.Reader, boundary string) *rawStream {
	return &rawStream{src: src, delim: append([]byte("--"), boundary...)}
}

func (s *rawStream) fill() error {
	if s.eof {
		return nil
	}
	chunk := make([]byte, rawChunkSize)
	n, err := s.src.Read(chunk)
	if n > 0 {
		s.buf = append(s.buf, chunk[:n]...)
	}
	if err != nil {
		if err == io.EOF {
			s.eof = true
			return nil
		}
		return err
	}
	return nil
}

// boundaryMatch describes a located boundary marker.
type boundaryMatch struct {
	dataEnd    int // index in buf where the preceding data ends
	consumedTo int // index in buf just past the boundary line (incl. trailing newline)
	terminal   bool
}

// locate searches buf for the next valid boundary occurrence: delim
// preceded by "\r\n", by "\n", or located at buf[0] (only ever true for the
// very first boundary in the stream, before any part has been entered).
// It returns found=false when more data is needed (and the caller isn't at
// EOF yet) or when the stream ended without a match (framing error, left to
// the caller to report).
func (s *rawStream) locate() (m boundaryMatch, found bool) {
	searchFrom := 0
	for {
		idx := bytes.Index(s.buf[searchFrom:], s.delim)
		if idx < 0 {
			return boundaryMatch{}, false
		}
		idx += searchFrom

		preLen := 0
		switch {
		case idx >= 2 && s.buf[idx-2] == '\r' && s.buf[idx-1] == '\n':
			preLen = 2
		case idx >= 1 && s.buf[idx-1] == '\n':
			preLen = 1
		case idx == 0 && !s.pastFirst:
			preLen = 0
		default:
			searchFrom = idx + 1
			continue
		}

		after := idx + len(s.delim)
		terminal := false
		if after+2 <= len(s.buf) && s.buf[after] == '-' && s.buf[after+1] == '-' {
			terminal = true
			after += 2
		} else if after+2 > len(s.buf) && !s.eof {
			// Not enough data yet to know whether this is a terminal "--".
			return boundaryMatch{}, false
		}

		lineEnd := after
		if lineEnd+1 < len(s.buf) && s.buf[lineEnd] == '\r' && s.buf[lineEnd+1] == '\n' {
			lineEnd += 2
		} else if lineEnd < len(s.buf) && s.buf[lineEnd] == '\n' {
			lineEnd++
		} else if lineEnd >= len(s.buf) && !s.eof {
			return boundaryMatch{}, false
		}

		return boundaryMatch{dataEnd: idx - preLen, consumedTo: lineEnd, terminal: terminal}, true
	}
}

// marginLen is how many trailing bytes of buf might still be a partial
// boundary match, so they must never be emitted as part data.
func (s *rawStream) marginLen() int {
	return len(s.delim) + 4
}

// consume drops the first n bytes of buf.
func (s *rawStream) consume(n int) {
	s.buf = s.buf[n:]
}

// advanceToFirstBoundary skips any preamble before the first boundary line
// (RFC 7578 allows arbitrary bytes before it, though well-formed clients
// emit none) and positions the stream just past it.
func (s *rawStream) advanceToFirstBoundary() (terminal bool, err error) {
	for {
		if m, found := s.locate(); found {
			s.consume(m.consumedTo)
			s.pastFirst = true
			return m.terminal, nil
		}
		if s.eof {
			return false, apperror.New(apperror.InvalidMultipart, "boundary not found in body")
		}
		if err := s.fill(); err != nil {
			return false, apperror.Wrap(apperror.InvalidMultipart, "reading multipart body", err)
		}
	}
}

// readHeaderBlock reads up to the blank line terminating one part's headers.
func (s *rawStream) readHeaderBlock(maxSize int) (string, error) {
	for {
		if pos := bytes.Index(s.buf, []byte("\r\n\r\n")); pos >= 0 {
			if pos > maxSize {
				return "", apperror.New(apperror.InvalidMultipart, "part headers too large")
			}
			block := string(s.buf[:pos])
			s.consume(pos + 4)
			return block, nil
		}
		if pos := bytes.Index(s.buf, []byte("\n\n")); pos >= 0 {
			if pos > maxSize {
				return "", apperror.New(apperror.InvalidMultipart, "part headers too large")
			}
			block := string(s.buf[:pos])
			s.consume(pos + 2)
			return block, nil
		}
		if len(s.buf) > maxSize {
			return "", apperror.New(apperror.InvalidMultipart, "part headers too large")
		}
		if s.eof {
			return "", apperror.New(apperror.InvalidMultipart, "unexpected end of part headers")
		}
		if err := s.fill(); err != nil {
			return "", apperror.Wrap(apperror.InvalidMultipart, "reading part headers", err)
		}
	}
}

// nextChunk returns the next slice of the current part's body safe to emit
// (i.e. guaranteed not to contain a partial boundary match), along with
// whether the part has ended and, if so, whether the boundary was terminal.
// The returned slice aliases buf and is only valid until the next call.
func (s *rawStream) nextChunk() (data []byte, ended bool, terminal bool, err error) {
	for {
		if m, found := s.locate(); found {
			data = s.buf[:m.dataEnd]
			s.consume(m.consumedTo)
			return data, true, m.terminal, nil
		}
		if s.eof {
			return nil, false, false, apperror.New(apperror.InvalidMultipart, "part body missing terminating boundary")
		}

		margin := s.marginLen()
		if len(s.buf) > margin {
			safe := len(s.buf) - margin
			data = s.buf[:safe]
			s.consume(safe)
			return data, false, false, nil
		}

		if err := s.fill(); err != nil {
			return nil, false, false, apperror.Wrap(apperror.InvalidMultipart, "reading part body", err)
		}
	}
}
