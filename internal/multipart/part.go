package multipart

import (
	"io"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// Part is a single multipart/form-data part. Its body streams from the
// underlying connection via Read; callers that need a disk-backed file
// write straight from Read rather than buffering the whole part.
type Part struct {
	FieldName        string
	Filename         string
	HasFilename      bool
	ContentType      string
	TransferEncoding string

	parser *Parser
	done   bool // true once this part's terminal boundary has been consumed
	read   int64
	maxSize int64
}

// IsFile reports whether this part carries a filename, per RFC 7578's
// convention that file parts always set the filename parameter.
func (p *Part) IsFile() bool { return p.HasFilename }

// Read streams the part's body. It returns io.EOF once the part's
// terminating boundary has been reached. Requesting the next part from the
// Parser before io.EOF discards the rest of this part's body.
func (p *Part) Read(buf []byte) (int, error) {
	if p.done {
		return 0, io.EOF
	}
	if len(p.parser.pending) > 0 {
		n := copy(buf, p.parser.pending)
		p.parser.pending = p.parser.pending[n:]
		p.read += int64(n)
		if p.maxSize > 0 && p.read > p.maxSize {
			return n, apperror.TooLarge("multipart part exceeds maximum size", p.maxSize)
		}
		return n, nil
	}

	data, ended, terminal, err := p.parser.stream.nextChunk()
	if err != nil {
		return 0, err
	}
	if ended {
		p.done = true
		p.parser.lastPartTerminal = terminal
	}

	n := copy(buf, data)
	if n < len(data) {
		// buf was smaller than the chunk; stash the remainder for the next Read.
		p.parser.pending = append(p.parser.pending, data[n:]...)
	}
	p.read += int64(n)
	if p.maxSize > 0 && p.read > p.maxSize {
		return n, apperror.TooLarge("multipart part exceeds maximum size", p.maxSize)
	}
	if n == 0 && p.done {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAll reads the entire part body into memory, bounded by maxSize (0
// means use the part's configured MaxPartSize, itself 0 for unlimited).
// Most callers streaming uploads to disk should prefer Read directly.
func (p *Part) ReadAll(maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = p.maxSize
	}
	var out []byte
	buf := make([]byte, 32*1024)
	for {
		n, err := p.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
			if maxSize > 0 && int64(len(out)) > maxSize {
				return nil, apperror.TooLarge("multipart part exceeds maximum size", maxSize)
			}
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Discard drains any unread body data so the parser can advance to the next
// part, used when a handler decides not to consume a Part it received.
func (p *Part) Discard() error {
	buf := make([]byte, 32*1024)
	for {
		_, err := p.Read(buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
