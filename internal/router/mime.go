package router

import "mime"

// mimeTypeForExt resolves a MIME type from a file extension, falling back
// to a generic binary type when the standard library's table has no entry.
func mimeTypeForExt(ext string) string {
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "application/octet-stream"
	}
	return t
}
