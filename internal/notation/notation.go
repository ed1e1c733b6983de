package notation

import (
	"regexp"
	"strings"
)

// Form classifies a document notation.
type Form uint8

const (
	FormNumber Form = iota // "026.09"
	FormRange              // "001-008"
	FormVersus             // "T1-0922 vs T1-093-099"
)

// String returns the form name.
func (f Form) String() string {
	switch f {
	case FormRange:
		return "range"
	case FormVersus:
		return "versus"
	default:
		return "number"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Form) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

var versusRe = regexp.MustCompile(`(?i)\s+vs\.?\s+`)

// Notation is the pre-parsed notation of a document. A versus notation holds
// one alternative per side; each alternative is either a number or a range.
type Notation struct {
	Raw     string
	Form    Form
	Whole   ParsedNumber   // the raw text tokenized as a single number
	Numbers []ParsedNumber // single-number alternatives
	Ranges  []Range        // range alternatives
}

// ParseNotation classifies and parses a document notation. It never fails.
func ParseNotation(raw string) Notation {
	n := Notation{Raw: raw, Whole: ParseNumber(raw)}

	parts := versusRe.Split(strings.TrimSpace(raw), -1)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if IsRangeText(part) {
			n.Ranges = append(n.Ranges, ParseRange(part))
		} else {
			n.Numbers = append(n.Numbers, ParseNumber(part))
		}
	}

	switch {
	case len(parts) > 1:
		n.Form = FormVersus
	case len(n.Ranges) > 0:
		n.Form = FormRange
	default:
		n.Form = FormNumber
	}
	return n
}

// Matches reports whether q equals the notation or one of its number
// alternatives.
func (n Notation) Matches(q ParsedNumber) bool {
	if q.IsEmpty() {
		return false
	}
	if n.Whole.Equal(q) {
		return true
	}
	for _, num := range n.Numbers {
		if num.Equal(q) {
			return true
		}
	}
	return false
}

// Coverage returns the best quality of any range alternative covering q.
// Exact and loose-prefix coverage beat malformed-fallback.
func (n Notation) Coverage(q ParsedNumber) (Quality, bool) {
	best, found := QualityMalformedFallback, false
	for _, r := range n.Ranges {
		if !r.Covers(q) {
			continue
		}
		if !found || (best == QualityMalformedFallback && r.Quality != QualityMalformedFallback) {
			best = r.Quality
		}
		found = true
	}
	return best, found
}

// DescendsFrom reports whether any number alternative has prefix p.
func (n Notation) DescendsFrom(p ParsedNumber) bool {
	for _, num := range n.Numbers {
		if num.HasPrefix(p) {
			return true
		}
	}
	return false
}
