package assets

import (
	"html/template"
	"strings"
	"time"
)

var uploadFormTemplate = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Upload to IronDrop</title>
<link rel="stylesheet" href="/_irondrop/static/style.css"></head>
<body>
<div class="card">
<h1>Upload to {{.TargetLabel}}</h1>
<form method="POST" action="{{.Action}}" enctype="multipart/form-data">
<input type="file" name="file" multiple>
<p><button type="submit">Upload</button></p>
</form>
</div>
</body></html>`))

// UploadFormPage renders the HTML upload form for a GET to
// /_irondrop/upload, per SPEC_FULL.md §4.6. targetPath is the directory the
// upload will land in (shown to the operator so they know where files go);
// action is the form's POST target, already including any ?upload_to=
// query parameter the caller wants preserved.
func UploadFormPage(targetPath, action string) string {
	label := targetPath
	if label == "" {
		label = "/"
	}
	var b strings.Builder
	_ = uploadFormTemplate.Execute(&b, struct{ TargetLabel, Action string }{label, action})
	return b.String()
}

var monitorTemplate = template.Must(template.New("monitor").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>IronDrop monitor</title>
<link rel="stylesheet" href="/_irondrop/static/style.css"></head>
<body>
<div class="card">
<h1>Server status</h1>
<table class="stats">
<tr><td>Uptime</td><td>{{.Uptime}}</td></tr>
<tr><td>Requests</td><td>{{.TotalRequests}} ({{.SuccessfulRequests}} ok, {{.ErrorRequests}} errors)</td></tr>
<tr><td>Bytes served</td><td>{{.BytesServed}}</td></tr>
<tr><td>Uploads</td><td>{{.TotalUploads}} ({{printf "%.1f" .SuccessRate}}% success)</td></tr>
<tr><td>Files uploaded</td><td>{{.FilesUploaded}}</td></tr>
<tr><td>Concurrent uploads</td><td>{{.ConcurrentUploads}}</td></tr>
</table>
</div>
</body></html>`))

// MonitorSnapshot carries the fields the HTML dashboard renders; built from
// internal/server's Stats.RequestSnapshot and Stats.UploadSnapshot so this
// package doesn't import internal/server.
type MonitorSnapshot struct {
	Uptime             time.Duration
	TotalRequests      uint64
	SuccessfulRequests uint64
	ErrorRequests      uint64
	BytesServed        uint64
	TotalUploads       uint64
	FilesUploaded      uint64
	ConcurrentUploads  uint64
	SuccessRate        float64
}

// MonitorPage renders the HTML dashboard for GET /monitor (without
// ?json=1), per SPEC_FULL.md §4.6.
func MonitorPage(s MonitorSnapshot) string {
	s.Uptime = s.Uptime.Round(time.Second)
	var b strings.Builder
	_ = monitorTemplate.Execute(&b, s)
	return b.String()
}
