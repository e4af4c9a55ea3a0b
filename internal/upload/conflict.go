package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dev-harsh1998/irondrop/internal/apperror"
)

// resolveConflict finds a non-existent path in dir for name, trying
// name_1.ext, name_2.ext, … up to name_9999.ext per SPEC_FULL.md §4.5. It
// returns the resolved path and whether a suffix had to be applied.
func resolveConflict(dir, name string) (path string, renamed bool, err error) {
	path = filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, false, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i <= 9999; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		path = filepath.Join(dir, candidate)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, true, nil
		}
	}
	return "", false, apperror.New(apperror.Internal, "no available filename after 9999 conflicts")
}
