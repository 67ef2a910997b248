package reconcile

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Merge folds fragment b into accumulated text a. Fragments already covered
// by a are dropped, supersets replace a, and an overlap between the end of a
// and the start of b is spliced once. Disjoint fragments are joined, with a
// single space unless either side already has whitespace at the seam.
//
// The result is never longer than len(a)+len(b)+1 bytes; the extra byte is
// the separator added between disjoint fragments.
func Merge(a, b string) string {
	switch {
	case a == "":
		return b
	case strings.Contains(a, b):
		return a
	case strings.Contains(b, a):
		return b
	}

	if k := overlap(a, b); k > 0 {
		return a + b[k:]
	}

	if endsWithSpace(a) || startsWithSpace(b) {
		return a + b
	}
	return a + " " + b
}

// overlap returns the length in bytes of the longest suffix of a that is also
// a prefix of b, counting only whole runes.
func overlap(a, b string) int {
	n := min(len(a), len(b))
	for k := n; k > 0; k-- {
		if k < len(b) && !utf8.RuneStart(b[k]) {
			continue
		}
		if strings.HasSuffix(a, b[:k]) {
			return k
		}
	}
	return 0
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
