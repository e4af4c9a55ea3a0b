package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
)

// RenderJSON marshals result for Accept: application/json (or
// X-Requested-With) requests, per SPEC_FULL.md §4.5.
func RenderJSON(result *Result) ([]byte, error) {
	return json.Marshal(result)
}

// RenderHTML builds a minimal human-readable upload summary page.
func RenderHTML(result *Result) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>Upload complete</title></head><body>")
	fmt.Fprintf(&b, "<h1>%d file(s) uploaded</h1><ul>", len(result.Files))
	for _, f := range result.Files {
		fmt.Fprintf(&b, "<li>%s (%d bytes)", html.EscapeString(f.Name), f.Size)
		if f.Renamed {
			b.WriteString(" &mdash; renamed to avoid overwrite")
		}
		if f.Checksum != "" {
			fmt.Fprintf(&b, "<br><code>%s</code>", f.Checksum)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "<p class=\"warning\">%s</p>", html.EscapeString(w))
	}
	b.WriteString("</body></html>")
	return b.Bytes()
}
