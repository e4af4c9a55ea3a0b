package multipart

import (
	"io"
	"strings"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// Parser drives iteration over a multipart/form-data body's parts, per
// SPEC_FULL.md §4.4. Only one Part is live at a time: calling Next discards
// whatever the caller left unread of the current Part.
type Parser struct {
	cfg    Config
	stream *rawStream

	current          *Part
	pending          []byte
	partsServed      int
	lastPartTerminal bool
	finished         bool
}

// New builds a Parser reading from src, which delivers the raw bytes of a
// multipart/form-data request body (as received after Content-Length
// framing has already been resolved by the caller).
func New(src io.Reader, boundary string, cfg Config) (*Parser, error) {
	if err := validateBoundary(boundary); err != nil {
		return nil, err
	}
	return &Parser{cfg: cfg, stream: newRawStream(src, boundary)}, nil
}

// Next advances to the next part, returning io.EOF once the terminating
// boundary has been consumed. The previous Part returned (if any) need not
// have been fully read; Next discards any of its unread body itself, for
// callers that only inspect some parts.
func (p *Parser) Next() (*Part, error) {
	if p.finished {
		return nil, io.EOF
	}
	if p.current != nil && !p.current.done {
		if err := p.current.Discard(); err != nil {
			return nil, err
		}
	}
	p.current = nil

	if p.partsServed == 0 {
		terminal, err := p.stream.advanceToFirstBoundary()
		if err != nil {
			return nil, err
		}
		if terminal {
			p.finished = true
			return nil, io.EOF
		}
	} else if p.lastPartTerminal {
		p.finished = true
		return nil, io.EOF
	}

	if p.cfg.MaxParts > 0 && p.partsServed >= p.cfg.MaxParts {
		return nil, apperror.New(apperror.InvalidMultipart, "too many parts in multipart body")
	}

	headerSize := p.cfg.MaxPartHeadersSize
	if headerSize <= 0 {
		headerSize = DefaultMaxPartHeadersSize
	}
	block, err := p.stream.readHeaderBlock(headerSize)
	if err != nil {
		return nil, err
	}
	headers, err := parsePartHeaders(block, p.cfg)
	if err != nil {
		return nil, err
	}

	if headers.hasFilename && len(p.cfg.AllowedExtensions) > 0 && !MatchExtension(headers.filename, p.cfg.AllowedExtensions) {
		return nil, apperror.New(apperror.UnsupportedMediaType, "file extension not allowed")
	}
	if headers.hasFilename && len(p.cfg.AllowedMIMETypes) > 0 && headers.contentType != "" && !matchMIMEType(headers.contentType, p.cfg.AllowedMIMETypes) {
		return nil, apperror.New(apperror.UnsupportedMediaType, "content type not allowed")
	}

	part := &Part{
		FieldName:        headers.fieldName,
		Filename:         headers.filename,
		HasFilename:      headers.hasFilename,
		ContentType:      headers.contentType,
		TransferEncoding: headers.transferEncoding,
		parser:           p,
		maxSize:          p.cfg.MaxPartSize,
	}
	p.current = part
	p.partsServed++
	return part, nil
}

// matchMIMEType reports whether contentType matches one of the allowed
// patterns exactly (case-insensitive), ignoring any parameters such as
// charset.
func matchMIMEType(contentType string, allowed []string) bool {
	base, _, _ := strings.Cut(contentType, ";")
	base = strings.TrimSpace(base)
	for _, a := range allowed {
		if strings.EqualFold(base, a) {
			return true
		}
	}
	return false
}
