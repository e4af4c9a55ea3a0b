package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// resolveTargetDir implements SPEC_FULL.md §4.5's target directory order:
// a validated ?upload_to= query parameter, else the server's configured
// default, else the OS default Downloads directory.
func resolveTargetDir(root, requestedUploadTo, configuredDefault string) (string, error) {
	if requestedUploadTo != "" {
		return validateUploadTo(root, requestedUploadTo)
	}
	if configuredDefault != "" {
		return configuredDefault, nil
	}
	dir, err := defaultDownloadsDir()
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "resolving default upload directory", err)
	}
	return dir, nil
}

// validateUploadTo resolves requested against root and rejects any result
// that escapes it, guarding against "../" traversal through the query
// parameter.
func validateUploadTo(root, requested string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "resolving served root", err)
	}
	joined := filepath.Join(absRoot, requested)
	rel, err := filepath.Rel(absRoot, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperror.New(apperror.Forbidden, "upload_to escapes served root")
	}

	info, err := os.Stat(joined)
	if err != nil {
		return "", apperror.New(apperror.BadRequest, "upload_to does not exist")
	}
	if !info.IsDir() {
		return "", apperror.New(apperror.BadRequest, "upload_to is not a directory")
	}
	return joined, nil
}

// defaultDownloadsDir returns the per-OS default Downloads directory, per
// SPEC_FULL.md §4.5.
func defaultDownloadsDir() (string, error) {
	if xdg := os.Getenv("XDG_DOWNLOAD_DIR"); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "Downloads"), nil
	}
	return filepath.Join(home, "Downloads"), nil
}

// probeWritable verifies dir is writable by creating and removing a
// zero-byte temp file, rather than trusting file mode bits (which can lie on
// network filesystems or under unusual ACLs).
func probeWritable(dir string) error {
	probe := filepath.Join(dir, fmt.Sprintf(".irondrop_probe_%d", os.Getpid()))
	f, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return apperror.Wrap(apperror.UploadDiskFull, "target directory is not writable", err)
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return nil
}
