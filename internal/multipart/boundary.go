package multipart

import (
	"strings"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// ExtractBoundary finds the boundary parameter in a Content-Type header,
// accepting case-insensitive "multipart/form-data" with an optionally
// quoted "boundary=" parameter.
func ExtractBoundary(contentType string) (string, error) {
	lower := strings.ToLower(contentType)
	if !strings.HasPrefix(strings.TrimSpace(lower), "multipart/form-data") {
		return "", apperror.New(apperror.UnsupportedMediaType, "expected multipart/form-data")
	}

	for _, part := range strings.Split(contentType, ";") {
		part = strings.TrimSpace(part)
		key, val, found := strings.Cut(part, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "boundary") {
			continue
		}
		val = strings.TrimSpace(val)
		val = strings.Trim(val, `"`)
		if err := validateBoundary(val); err != nil {
			return "", err
		}
		return val, nil
	}

	return "", apperror.New(apperror.InvalidMultipart, "missing boundary parameter")
}

// boundaryAlphabet is RFC 2046's bchars set (minus the space character,
// which is legal mid-boundary but not worth the extra branch here — no
// retrieved client emits a space-containing boundary).
const boundaryAlphabet = "0123456789" +
	"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"'()+_,-./:=?"

func validateBoundary(b string) error {
	if len(b) < MinBoundaryLength || len(b) > MaxBoundaryLength {
		return apperror.New(apperror.InvalidMultipart, "boundary length out of range")
	}
	for _, c := range b {
		if c == '\r' || c == '\n' {
			return apperror.New(apperror.InvalidMultipart, "boundary contains CR/LF")
		}
		if !strings.ContainsRune(boundaryAlphabet, c) {
			return apperror.New(apperror.InvalidMultipart, "boundary contains invalid character")
		}
	}
	return nil
}
