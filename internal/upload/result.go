package upload

// UploadedFile describes one part successfully written to disk.
type UploadedFile struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Renamed     bool   `json:"renamed"`
	ContentType string `json:"content_type"`
	Checksum    string `json:"checksum,omitempty"`
}

// Result aggregates every file written by one upload request, per
// SPEC_FULL.md §4.5's "assemble an UploadResult" step.
type Result struct {
	Files        []UploadedFile `json:"files"`
	Warnings     []string       `json:"warnings,omitempty"`
	TotalBytes   int64          `json:"total_bytes"`
	ProcessingMS int64          `json:"processing_ms"`
}
