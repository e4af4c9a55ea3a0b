package searchindex

import "strings"

// score computes the relevance score for a candidate name against a query,
// compared case-insensitively (score lowercases both) unless
// caseSensitive is set. Formula from SPEC_FULL.md §4.2 / original_source
// search.rs calculate_relevance_score: exact=100, prefix=75, suffix=50,
// substring=25 (+25 whole-word bonus), fuzzy bonus 10/(1+distance) for
// Levenshtein distance in (0,2], short-name bonus 5/(1+0.1*len), depth
// penalty -2*depth, clamped at 0.
func score(name, query string, depth int, caseSensitive bool) float64 {
	n, q := name, query
	if !caseSensitive {
		n = strings.ToLower(name)
		q = strings.ToLower(query)
	}

	var s float64
	switch {
	case n == q:
		s += 100
	case strings.HasPrefix(n, q):
		s += 75
	case strings.HasSuffix(n, q):
		s += 50
	case strings.Contains(n, q):
		s += 25
		if hasWholeWord(n, q) {
			s += 25
		}
	}

	if d := levenshtein(n, q); d > 0 && d <= 2 {
		s += 10.0 / (1.0 + float64(d))
	}

	s += 5.0 / (1.0 + float64(len(name))*0.1)
	s -= float64(depth) * 2.0

	if s < 0 {
		s = 0
	}
	return s
}

// hasWholeWord reports whether query appears as a whole alphanumeric "word"
// in name, where words are separated by any non-alphanumeric rune.
func hasWholeWord(name, query string) bool {
	isSep := func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}
	for _, word := range strings.FieldsFunc(name, isSep) {
		if word == query {
			return true
		}
	}
	return false
}

// levenshtein computes edit distance between two strings, rune-aware.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			min := prev[j] + 1
			if v := curr[j-1] + 1; v < min {
				min = v
			}
			if v := prev[j-1] + cost; v < min {
				min = v
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// IsHidden reports whether name is a hidden entry per the glossary: starts
// with ".", starts with "._", or equals ".DS_Store".
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "._") || name == ".DS_Store"
}
