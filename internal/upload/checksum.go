package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
	"github.com/dev-harsh1998/irondrop/internal/httpproto"
)

// computeChecksum hashes the file at path with SHA-256, used for the
// optional ?checksum=1 diagnostic on upload responses (SPEC_FULL.md §4.5).
func computeChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "opening file for checksum", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "stat for checksum", err)
	}

	bufPtr := getBuffer(httpproto.OptimalBufferSize(info.Size()))
	defer putBuffer(bufPtr)

	hash := sha256.New()
	if _, err := io.CopyBuffer(hash, f, *bufPtr); err != nil {
		return "", apperror.Wrap(apperror.Internal, "computing checksum", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
