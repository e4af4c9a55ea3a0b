package searchindex

import "testing"

func TestScoreCategoryOrdering(t *testing.T) {
	query := "report"
	names := []string{"report", "reportx", "xreport", "zzreportzz"}
	scores := make(map[string]float64)
	for _, n := range names {
		scores[n] = score(n, query, 0, false)
	}

	if !(scores["report"] > scores["reportx"]) {
		t.Errorf("exact match should outscore prefix match: %v", scores)
	}
	if !(scores["reportx"] > scores["xreport"]) {
		t.Errorf("prefix match should outscore suffix match: %v", scores)
	}
	if !(scores["xreport"] > scores["zzreportzz"]) {
		t.Errorf("suffix match should outscore plain substring match: %v", scores)
	}
}

func TestScoreSingleCharacterQueryCategoryPrecedence(t *testing.T) {
	// See DESIGN.md "Scoring test note": a 1-char query collapses suffix and
	// substring into the same bucket, but exact and prefix still dominate.
	query := "x"
	exact := score("x", query, 0, false)
	prefix := score("xy", query, 0, false)
	other := score("yx", query, 0, false)

	if !(exact > prefix) {
		t.Errorf("exact should outscore prefix: exact=%f prefix=%f", exact, prefix)
	}
	if !(prefix > other) {
		t.Errorf("prefix should outscore suffix/substring: prefix=%f other=%f", prefix, other)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	// A deeply "nested" synthetic name (many slashes) with no match at all
	// should never go negative.
	name := "a/a/a/a/a/a/a/a/a/a/a/a/a/a/a/a/a/a/a/a.bin"
	s := score(name, "zzz-not-present", 20, false)
	if s < 0 {
		t.Errorf("score should clamp at 0, got %f", s)
	}
}

func TestScoreCaseInsensitiveByDefault(t *testing.T) {
	if score("Report.TXT", "report", 0, false) == 0 {
		t.Errorf("expected case-insensitive match to score above 0")
	}
}

func TestScoreCaseSensitive(t *testing.T) {
	insensitive := score("Report.TXT", "report", 0, false)
	sensitive := score("Report.TXT", "report", 0, true)
	if sensitive >= insensitive {
		t.Errorf("case-sensitive exact-case mismatch should score lower: sensitive=%f insensitive=%f", sensitive, insensitive)
	}
}

func TestWholeWordBonus(t *testing.T) {
	withBoundary := score("my_report_final.txt", "report", 0, false)
	withoutBoundary := score("myreportfinal.txt", "report", 0, false)
	if !(withBoundary > withoutBoundary) {
		t.Errorf("whole-word substring match should score higher than a squeezed-in substring: %f vs %f", withBoundary, withoutBoundary)
	}
}

func TestIsHidden(t *testing.T) {
	hidden := []string{".git", ".env", "._resource", ".DS_Store"}
	visible := []string{"report.txt", "a.b.c", "Makefile"}
	for _, n := range hidden {
		if !IsHidden(n) {
			t.Errorf("expected %q to be hidden", n)
		}
	}
	for _, n := range visible {
		if IsHidden(n) {
			t.Errorf("expected %q to be visible", n)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"report", "report", 0},
		{"report", "repotr", 2},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
