package multipart

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// sanitizeFilename rejects path-traversal attempts outright, strips
// dangerous characters from the remainder, and prepends "file" if the
// sanitized name would otherwise start with a dot, per SPEC_FULL.md §4.4.
func sanitizeFilename(name string) (string, error) {
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return "", apperror.New(apperror.InvalidMultipart, "filename contains path separators")
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		if isDangerousFilenameRune(c) {
			continue
		}
		b.WriteRune(c)
	}
	sanitized := strings.TrimSpace(b.String())
	if sanitized == "" {
		return "", apperror.New(apperror.InvalidMultipart, "empty filename after sanitization")
	}
	if strings.HasPrefix(sanitized, ".") {
		sanitized = "file" + sanitized
	}
	return sanitized, nil
}

func isDangerousFilenameRune(c rune) bool {
	if unicode.IsControl(c) {
		return true
	}
	switch c {
	case '<', '>', ':', '"', '|', '?', '*', '/', '\\':
		return true
	}
	return false
}

func containsInvalidFieldChars(name string) bool {
	for _, c := range name {
		if !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' || c == '.') {
			return true
		}
	}
	return false
}

// MatchExtension reports whether name's extension matches any of the
// caller-supplied glob patterns (case-insensitive), or true if patterns is
// empty (allow all). Exported so the filesystem fallback route (C6) can
// apply the same allowlist semantics used for uploaded files.
func MatchExtension(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if ok, _ := filepath.Match(strings.ToLower(p), lower); ok {
			return true
		}
	}
	return false
}
