// Package searchindex implements the compact, periodically-rebuilt directory
// search index described in SPEC_FULL.md §4.2: a StringPool-backed entry
// table, a radix index over base names for candidate lookup, and a
// short-lived LRU result cache, refreshed on a background ticker rather than
// synchronously on every write.
package searchindex

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dev-harsh1998/irondrop/internal/logging"
	"go.uber.org/zap"
)

const (
	defaultRebuildInterval = 60 * time.Second
	defaultMaxResults      = 200
	minScoreThreshold      = 1.0
)

// Result is one scored search hit returned to callers.
type Result struct {
	Path     string
	Name     string
	IsDir    bool
	Size     uint64
	Modified time.Time
	Score    float64
}

// Index owns the current generation and swaps in a fresh one on each
// rebuild, under a RWMutex so searches never block on a rebuild in progress
// beyond the final pointer swap.
type Index struct {
	root string

	mu  sync.RWMutex
	gen *generation

	cache *resultCache

	rebuildInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// New constructs an Index rooted at root. Call Initialize to perform the
// first build before serving searches, then Start to begin background
// rebuilds.
func New(root string) *Index {
	return &Index{
		root:            root,
		cache:           newResultCache(),
		rebuildInterval: defaultRebuildInterval,
	}
}

// Initialize performs the first synchronous build. Callers typically do this
// once at startup before accepting requests.
func (idx *Index) Initialize() error {
	return idx.rebuild()
}

// Start launches the background rebuild loop. It returns immediately; call
// Stop to terminate it during server shutdown.
func (idx *Index) Start() {
	idx.stopCh = make(chan struct{})
	go idx.rebuildLoop()
}

// Stop terminates the background rebuild loop. Safe to call multiple times.
func (idx *Index) Stop() {
	idx.stopOnce.Do(func() {
		if idx.stopCh != nil {
			close(idx.stopCh)
		}
	})
}

func (idx *Index) rebuildLoop() {
	ticker := time.NewTicker(idx.rebuildInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = idx.rebuild()
		case <-idx.stopCh:
			return
		}
	}
}

func (idx *Index) rebuild() error {
	g, err := buildGeneration(idx.root)
	if err != nil {
		logging.Warn("search index rebuild failed", zap.String("root", idx.root), zap.Error(err))
		return err
	}
	idx.mu.Lock()
	idx.gen = g
	idx.mu.Unlock()
	idx.cache.invalidateAll()
	logging.Debug("search index rebuilt",
		zap.String("root", idx.root), zap.Int("entries", len(g.entries)), zap.Bool("truncated", g.truncated))
	return nil
}

// Truncated reports whether the most recent generation hit the soft entry
// cap and stopped walking early.
func (idx *Index) Truncated() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.gen == nil {
		return false
	}
	return idx.gen.truncated
}

// EntryCount returns the number of entries in the most recent generation.
func (idx *Index) EntryCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.gen == nil {
		return 0
	}
	return len(idx.gen.entries)
}

// Search scores every candidate entry whose bucket matches query's first
// byte against query and returns the top matches sorted by descending score
// (ties broken by shorter, then lexicographically earlier, name). Results
// for an identical (query, scopePath, caseSensitive) tuple are served from a
// short-lived cache.
func (idx *Index) Search(query, scopePath string, caseSensitive bool, limit int) []Result {
	if limit <= 0 || limit > defaultMaxResults {
		limit = defaultMaxResults
	}

	key := cacheKey{query: query, path: scopePath, caseSensitive: caseSensitive}
	if cached, ok := idx.cache.get(key); ok {
		return capResults(cached, limit)
	}

	idx.mu.RLock()
	g := idx.gen
	idx.mu.RUnlock()
	if g == nil {
		return nil
	}

	lookupQuery := query
	if !caseSensitive {
		lookupQuery = strings.ToLower(query)
	}

	var candidates []radixEntry
	if len(lookupQuery) == 1 {
		// A single-character query matches too broadly to bucket-prune: scan
		// every bucket rather than just the one keyed on that character,
		// since substring/fuzzy matches can start anywhere in the name.
		candidates = g.radix.all()
	} else {
		candidates = g.radix.candidates(lookupQuery)
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		path := g.paths[c.entryIdx]
		if scopePath != "" && !strings.HasPrefix(path, scopePath) {
			continue
		}
		name := g.names[c.entryIdx]
		depth := strings.Count(path, "/")
		s := score(name, query, depth, caseSensitive)
		if s < minScoreThreshold {
			continue
		}
		e := g.entries[c.entryIdx]
		results = append(results, Result{
			Path:     path,
			Name:     name,
			IsDir:    e.IsDir(),
			Size:     e.Size(),
			Modified: e.Modified(),
			Score:    s,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if len(results[i].Name) != len(results[j].Name) {
			return len(results[i].Name) < len(results[j].Name)
		}
		return results[i].Name < results[j].Name
	})

	idx.cache.put(key, results)
	return capResults(results, limit)
}

func capResults(results []Result, limit int) []Result {
	if len(results) <= limit {
		return results
	}
	return results[:limit]
}

// CacheStats exposes the result cache's hit/miss/eviction counters for
// metrics reporting.
func (idx *Index) CacheStats() (hits, misses, evictions uint64) {
	return idx.cache.stats()
}
