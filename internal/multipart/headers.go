package multipart

import (
	"strings"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// partHeaders is the parsed header block preceding one part's body.
type partHeaders struct {
	raw             map[string]string
	fieldName       string
	filename        string
	hasFilename     bool
	contentType     string
	transferEncoding string
}

// parsePartHeaders parses the raw header block (already extracted up to the
// blank line separating headers from body) into a partHeaders value.
func parsePartHeaders(block string, cfg Config) (partHeaders, error) {
	if len(block) > cfg.MaxPartHeadersSize {
		return partHeaders{}, apperror.New(apperror.InvalidMultipart, "part headers too large")
	}

	ph := partHeaders{raw: make(map[string]string)}
	var dispositionValue string
	haveDisposition := false

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, val, found := strings.Cut(line, ":")
		if !found {
			return partHeaders{}, apperror.New(apperror.InvalidMultipart, "invalid part header line")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		ph.raw[key] = val

		switch key {
		case "content-disposition":
			dispositionValue = val
			haveDisposition = true
		case "content-type":
			ph.contentType = val
		case "content-transfer-encoding":
			ph.transferEncoding = val
		}
	}

	if !haveDisposition {
		return partHeaders{}, apperror.New(apperror.InvalidMultipart, "missing Content-Disposition")
	}
	if err := ph.parseContentDisposition(dispositionValue, cfg); err != nil {
		return partHeaders{}, err
	}
	return ph, nil
}

func (ph *partHeaders) parseContentDisposition(value string, cfg Config) error {
	fields := strings.Split(value, ";")
	if len(fields) == 0 {
		return apperror.New(apperror.InvalidMultipart, "empty Content-Disposition")
	}

	for _, field := range fields[1:] {
		field = strings.TrimSpace(field)
		key, val, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if len(val) > 1 && strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) {
			val = val[1 : len(val)-1]
		}

		switch key {
		case "name":
			if len(val) > cfg.MaxFieldNameLength {
				return apperror.New(apperror.InvalidMultipart, "field name too long")
			}
			if containsInvalidFieldChars(val) {
				return apperror.New(apperror.InvalidMultipart, "invalid characters in field name")
			}
			ph.fieldName = val
		case "filename":
			if len(val) > cfg.MaxFilenameLength {
				return apperror.New(apperror.InvalidMultipart, "filename too long")
			}
			sanitized, err := sanitizeFilename(val)
			if err != nil {
				return err
			}
			ph.filename = sanitized
			ph.hasFilename = true
		}
	}

	if ph.fieldName == "" {
		return apperror.New(apperror.InvalidMultipart, "missing name in Content-Disposition")
	}
	return nil
}
