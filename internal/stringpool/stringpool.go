// Package stringpool implements the append-only interned-string buffer used
// by the search index's compact entries (SPEC_FULL.md §3 "StringPool").
// Offset 0 is reserved for the empty string; once interned, an offset never
// changes — callers may cache offsets across calls (invariant (e)).
package stringpool

import "sort"

// entry is a (hash, offset) pair kept sorted by hash for O(log n) lookup.
type entry struct {
	hash   uint32
	offset uint32
}

// Pool is a contiguous NUL-terminated-string buffer with a sorted hash index.
// Not safe for concurrent use without external synchronization; the search
// index's rebuilder owns one Pool per generation and publishes it under its
// write lock (SPEC_FULL.md §4.2).
type Pool struct {
	data   []byte
	lookup []entry
}

// New returns a pool with offset 0 already reserved for "".
func New() *Pool {
	p := &Pool{
		data:   make([]byte, 0, 1<<20),
		lookup: make([]entry, 0, 1024),
	}
	p.data = append(p.data, 0)
	return p
}

// hashFNV1a computes the 32-bit FNV-1a hash of s.
func hashFNV1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Intern returns the offset of s in the pool, appending it if not already
// present. The empty string always returns offset 0.
func (p *Pool) Intern(s string) uint32 {
	if s == "" {
		return 0
	}
	h := hashFNV1a(s)
	i := sort.Search(len(p.lookup), func(i int) bool { return p.lookup[i].hash >= h })
	for j := i; j < len(p.lookup) && p.lookup[j].hash == h; j++ {
		if p.Get(p.lookup[j].offset) == s {
			return p.lookup[j].offset
		}
	}

	offset := uint32(len(p.data))
	p.data = append(p.data, s...)
	p.data = append(p.data, 0)

	p.lookup = append(p.lookup, entry{})
	copy(p.lookup[i+1:], p.lookup[i:])
	p.lookup[i] = entry{hash: h, offset: offset}

	return offset
}

// Get resolves an offset back to its string. Offset 0 is always "".
func (p *Pool) Get(offset uint32) string {
	if offset == 0 || int(offset) >= len(p.data) {
		return ""
	}
	start := int(offset)
	end := start
	for end < len(p.data) && p.data[end] != 0 {
		end++
	}
	return string(p.data[start:end])
}

// Len returns the number of distinct interned strings (excluding the
// reserved empty string).
func (p *Pool) Len() int { return len(p.lookup) }

// MemoryUsage estimates resident bytes: the buffer plus 8 bytes per lookup
// entry, mirroring the original implementation's accounting.
func (p *Pool) MemoryUsage() int { return len(p.data) + len(p.lookup)*8 }
