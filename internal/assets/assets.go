// Package assets provides the small set of static resources IronDrop serves
// itself: a stylesheet for the upload form and monitor dashboard, and
// favicon/logo images, grounded on original_source/src/templates.rs's
// TemplateEngine.get_static_asset/get_favicon (the Rust build embeds these
// via include_str!/include_bytes! from a templates/ and repo-root favicon
// set; Go's equivalent for text assets is embed.FS).
//
// The favicon/logo images are a placeholder 1x1 transparent PNG rather than
// a real brand asset — no icon file ships with this repo's source material,
// and a fabricated "real-looking" icon would just be noise. The wiring
// (content-type, cache headers, route registration) is what SPEC_FULL.md
// §4.6 actually requires; swapping in a designed icon later is a drop-in
// byte replacement.
package assets

import (
	"embed"
	"encoding/base64"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// placeholderPNGBase64 is a minimal valid 1x1 transparent PNG, used for
// every favicon size and the logo until a real asset is supplied.
const placeholderPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="

var placeholderPNG []byte

func init() {
	decoded, err := base64.StdEncoding.DecodeString(placeholderPNGBase64)
	if err != nil {
		panic("assets: invalid embedded placeholder PNG: " + err.Error())
	}
	placeholderPNG = decoded
}

// Favicon returns the bytes and content-type for one of the three favicon
// paths or the logo, per SPEC_FULL.md §4.6. ok is false for any other name.
func Favicon(name string) (data []byte, contentType string, ok bool) {
	switch name {
	case "favicon.ico":
		return placeholderPNG, "image/x-icon", true
	case "favicon-16x16.png", "favicon-32x32.png", "logo":
		return placeholderPNG, "image/png", true
	default:
		return nil, "", false
	}
}

// Static serves one file under /_irondrop/static/, resolving requestPath
// (everything after the "/_irondrop/static/" prefix) against the embedded
// static/ directory. Directory traversal is impossible since embed.FS has no
// notion of ".." escaping its root, but requestPath is still cleaned so
// "a//b" and "./a" resolve the way a caller expects.
func Static(requestPath string) (data []byte, contentType string, ok bool) {
	clean := path.Clean("/" + requestPath)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return nil, "", false
	}
	data, err := staticFS.ReadFile(path.Join("static", clean))
	if err != nil {
		return nil, "", false
	}
	return data, mimeTypeForStatic(clean), true
}

func mimeTypeForStatic(name string) string {
	switch {
	case strings.HasSuffix(name, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(name, ".js"):
		return "application/javascript; charset=utf-8"
	case strings.HasSuffix(name, ".svg"):
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
