package searchindex

import "sort"

// radixEntry associates one Entry (by index into the generation's entries
// slice) with the lowercase name it was bucketed under, which add uses to
// keep each bucket sorted by name. Search scores the generation's own names,
// not this copy.
type radixEntry struct {
	entryIdx int
	name     string
}

// radixIndex buckets entries by the first lowercased byte of their name,
// mirroring original_source/src/ultra_compact_search.rs's RadixIndex. A
// query only has to scan the bucket matching its own first byte rather than
// every entry in the generation.
type radixIndex struct {
	buckets [256][]radixEntry
}

func newRadixIndex() *radixIndex {
	return &radixIndex{}
}

// add inserts one entry into its bucket, keeping the bucket sorted by name
// so callers needing a stable scan order don't have to sort per-query.
func (r *radixIndex) add(entryIdx int, name string) {
	b := bucketFor(name)
	bucket := r.buckets[b]
	i := sort.Search(len(bucket), func(i int) bool { return bucket[i].name >= name })
	bucket = append(bucket, radixEntry{})
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = radixEntry{entryIdx: entryIdx, name: name}
	r.buckets[b] = bucket
}

// bucketFor returns the bucket index for a (lowercase) name: the lowercased
// first byte, or bucket 0 for an empty name.
func bucketFor(name string) byte {
	if len(name) == 0 {
		return 0
	}
	c := name[0]
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}

// candidates returns the bucket(s) worth scanning for query q. A query whose
// first character could plausibly match a fuzzy/substring hit anywhere in a
// name can't be bucket-pruned the same way an exact/prefix query can, so for
// queries longer than one character we scan only the matching bucket (the
// common case: prefix/exact matches share the first byte); for very short
// queries, or when the caller wants a full scan (e.g. fuzzy queries), all
// buckets are considered by the caller instead of calling this method.
func (r *radixIndex) candidates(q string) []radixEntry {
	if len(q) == 0 {
		return r.all()
	}
	return r.buckets[bucketFor(q)]
}

// all returns every bucketed entry, in bucket order.
func (r *radixIndex) all() []radixEntry {
	total := 0
	for _, b := range r.buckets {
		total += len(b)
	}
	out := make([]radixEntry, 0, total)
	for _, b := range r.buckets {
		out = append(out, b...)
	}
	return out
}
