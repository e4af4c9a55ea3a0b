package searchindex

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/dev-harsh1998/irondrop/internal/stringpool"
)

const (
	maxWalkDepth  = 20
	softEntryCap  = 100_000
)

// generation is one immutable snapshot of the index: the interned path
// strings, the compact entries built over them, and a radix index over
// lowercased base names for fast candidate lookup. The server swaps in a
// fresh generation under a RWMutex rather than mutating one in place
// (SPEC_FULL.md §4.2 "background rebuild").
type generation struct {
	root     string
	pool     *stringpool.Pool
	entries  []Entry
	paths    []string // parallel to entries, root-relative path with original case
	names    []string // parallel to entries, base name with original case
	radix    *radixIndex
	truncated bool
	builtAt  time.Time
}

// buildGeneration walks root and produces a new generation. Errors reading
// individual entries (permission denied, races with concurrent deletes) are
// skipped rather than aborting the whole walk, matching a best-effort index.
func buildGeneration(root string) (*generation, error) {
	g := &generation{
		root:  root,
		pool:  stringpool.New(),
		radix: newRadixIndex(),
	}

	rootIDs := make(map[string]uint32)
	rootIDs[root] = 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		depth := strings.Count(rel, "/") + 1
		if depth > maxWalkDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if IsHidden(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if len(g.entries) >= softEntryCap {
			g.truncated = true
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		// ParentID is left at 0: the pool interns the full root-relative path
		// rather than per-segment names, so entries don't need a parent chain
		// to reconstruct a display path.
		nameOffset := g.pool.Intern(rel)
		idx := len(g.entries)
		entry := NewEntry(nameOffset, 0, uint64(info.Size()), d.IsDir(), info.ModTime())
		g.entries = append(g.entries, entry)
		g.paths = append(g.paths, rel)
		g.names = append(g.names, name)
		g.radix.add(idx, strings.ToLower(name))

		return nil
	})
	if err != nil {
		return nil, err
	}

	g.builtAt = time.Now()
	return g, nil
}
