package multipart

import "testing"

func TestSanitizeFilenameRejectsTraversal(t *testing.T) {
	cases := []string{"../etc/passwd", "a/b.txt", `a\b.txt`, "..\\..\\win.ini"}
	for _, c := range cases {
		if _, err := sanitizeFilename(c); err == nil {
			t.Errorf("expected error sanitizing %q", c)
		}
	}
}

func TestSanitizeFilenameStripsDangerousChars(t *testing.T) {
	got, err := sanitizeFilename("report<1>:final?.txt")
	if err != nil {
		t.Fatalf("sanitizeFilename: %v", err)
	}
	if got != "report1final.txt" {
		t.Errorf("expected dangerous characters stripped, got %q", got)
	}
}

func TestSanitizeFilenamePrependsFileForDotPrefix(t *testing.T) {
	got, err := sanitizeFilename(".bashrc")
	if err != nil {
		t.Fatalf("sanitizeFilename: %v", err)
	}
	if got != "file.bashrc" {
		t.Errorf("expected file.bashrc, got %q", got)
	}
}

func TestSanitizeFilenameEmptyAfterStrip(t *testing.T) {
	if _, err := sanitizeFilename("???"); err == nil {
		t.Error("expected error for filename that sanitizes to empty")
	}
}

func TestSanitizeFilenamePlainNamePassesThrough(t *testing.T) {
	got, err := sanitizeFilename("photo.jpg")
	if err != nil {
		t.Fatalf("sanitizeFilename: %v", err)
	}
	if got != "photo.jpg" {
		t.Errorf("expected unchanged photo.jpg, got %q", got)
	}
}

func TestContainsInvalidFieldChars(t *testing.T) {
	if containsInvalidFieldChars("file_name-1.field") {
		t.Error("expected valid field name to pass")
	}
	if !containsInvalidFieldChars("file name") {
		t.Error("expected space to be rejected")
	}
	if !containsInvalidFieldChars("file/name") {
		t.Error("expected slash to be rejected")
	}
}

func TestMatchExtensionEmptyAllowsAll(t *testing.T) {
	if !MatchExtension("anything.bin", nil) {
		t.Error("expected empty pattern list to allow all")
	}
}

func TestMatchExtensionGlob(t *testing.T) {
	patterns := []string{"*.zip", "*.tar.gz"}
	if !MatchExtension("archive.ZIP", patterns) {
		t.Error("expected case-insensitive match for archive.ZIP")
	}
	if MatchExtension("payload.exe", patterns) {
		t.Error("expected payload.exe to be rejected")
	}
}
