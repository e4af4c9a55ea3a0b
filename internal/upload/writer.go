package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
	"github.com/dev-harsh1998/irondrop/internal/httpproto"
)

// writeAtomic streams src into a temp file beside finalPath, fsyncs it, and
// renames it onto finalPath, per SPEC_FULL.md §4.5 step 5. Any failure
// removes the temp file; finalPath is never left partially written.
func writeAtomic(dir, finalPath string, src io.Reader, expectedSize int64) (written int64, err error) {
	tempPath := filepath.Join(dir, tempFileName())

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return 0, apperror.Wrap(apperror.Internal, "creating temp upload file", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tempPath)
	}

	bufPtr := getBuffer(httpproto.OptimalBufferSize(expectedSize))
	defer putBuffer(bufPtr)

	written, err = io.CopyBuffer(f, src, *bufPtr)
	if err != nil {
		cleanup()
		return 0, apperror.Wrap(apperror.Internal, "writing upload body", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return 0, apperror.Wrap(apperror.Internal, "fsync upload body", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return 0, apperror.Wrap(apperror.Internal, "closing upload body", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return 0, apperror.Wrap(apperror.Internal, "renaming upload into place", err)
	}
	return written, nil
}

// tempFileName builds the ".irondrop_temp_<pid>_<nanos>_<hash>.tmp" name from
// SPEC_FULL.md §4.5; the trailing hash disambiguates two uploads landing in
// the same directory in the same nanosecond.
func tempFileName() string {
	var rnd [4]byte
	_, _ = rand.Read(rnd[:])
	return fmt.Sprintf(".irondrop_temp_%d_%d_%s.tmp", os.Getpid(), time.Now().UnixNano(), hex.EncodeToString(rnd[:]))
}
