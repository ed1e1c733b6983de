package search

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// Ratio is the normalized indel similarity of two strings in [0,1]:
// 1 - distance/(len(a)+len(b)) with insert and delete cost 1 and substitute
// cost 2. Identical strings score 1.
func Ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	d := smetrics.WagnerFischer(a, b, 1, 1, 2)
	return 1 - float64(d)/float64(total)
}

// PartialRatio scores how well the shorter text appears inside the longer
// one. A substring scores 1. Otherwise the shorter text is compared with
// every window of the longer text holding the same number of words, and
// the best Ratio wins. Inputs are compared case-insensitively.
func PartialRatio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if len(a) > len(b) {
		a, b = b, a
	}
	if strings.TrimSpace(a) == "" {
		return 0
	}
	if strings.Contains(b, a) {
		return 1
	}
	return windowRatio(splitWords(a), splitWords(b))
}

// windowRatio compares needle words against each same-size window of
// haystack words.
func windowRatio(needle, haystack []string) float64 {
	if len(needle) == 0 || len(haystack) == 0 {
		return 0
	}
	n := len(needle)
	if n > len(haystack) {
		n = len(haystack)
	}
	target := strings.Join(needle, " ")
	best := 0.0
	for i := 0; i+n <= len(haystack); i++ {
		if r := Ratio(target, strings.Join(haystack[i:i+n], " ")); r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return best
}

// splitWords splits on anything that is not a letter or digit.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
