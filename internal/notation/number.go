// Package notation parses Dewey Decimal Classification notations.
//
// A notation is tokenized into an optional auxiliary table prefix (T1..T6,
// T3A..T3C) and a sequence of comparable segments. Ranges ("001-008",
// "920.03-.09", "220.1-220.Summary") are parsed with a quality grade so that
// malformed bounds degrade to prefix coverage instead of failing.
//
// Parsing never fails: any input yields a best-effort ParsedNumber.
package notation

import (
	"regexp"
	"strings"
	"unicode"
)

// SegmentKind distinguishes digit runs from letter runs.
type SegmentKind uint8

const (
	// KindNumeric is a maximal run of digits.
	KindNumeric SegmentKind = iota
	// KindAlpha is a maximal run of letters (lower-cased).
	KindAlpha
)

// Segment is one comparable token of a notation.
type Segment struct {
	Text string
	Kind SegmentKind
	// Sep is the separator that preceded the segment: "" when the segment
	// directly follows the previous one, "." for the start of a fractional
	// part, or the collapsed punctuation otherwise.
	Sep string
}

// Fractional reports whether the segment opens a fractional part.
func (s Segment) Fractional() bool {
	return s.Sep == "."
}

// ParsedNumber is a tokenized notation.
type ParsedNumber struct {
	TablePrefix string    // canonical upper-case table tag, e.g. "T1", "T3B"
	Segments    []Segment // ordered comparable tokens
	Raw         string    // original input
}

// tablePrefixRe matches a leading auxiliary table tag followed by "-" or "--".
var tablePrefixRe = regexp.MustCompile(`^[Tt]([1-6])([A-Ca-c]?)(?:\s*--?\s*|$)`)

// ParseNumber tokenizes a raw notation.
func ParseNumber(text string) ParsedNumber {
	p := ParsedNumber{Raw: text}
	s := strings.TrimSpace(text)
	if m := tablePrefixRe.FindStringSubmatch(s); m != nil {
		p.TablePrefix = "T" + m[1] + strings.ToUpper(m[2])
		s = s[len(m[0]):]
	}

	p.Segments = tokenize(s)
	if len(p.Segments) == 0 && s != "" {
		// Nothing tokenizable: keep the trimmed text as one opaque token.
		p.Segments = []Segment{{Text: strings.ToLower(s), Kind: KindAlpha}}
	}
	return p
}

func tokenize(s string) []Segment {
	runes := []rune(strings.ToLower(s))
	var segs []Segment
	var sep strings.Builder

	flushSep := func() string {
		out := sep.String()
		sep.Reset()
		if strings.Contains(out, ".") {
			return "."
		}
		trimmed := strings.Join(strings.Fields(out), "")
		if trimmed == "" && out != "" {
			return " "
		}
		return trimmed
	}

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			segs = append(segs, Segment{Text: string(runes[i:j]), Kind: KindNumeric, Sep: flushSep()})
			i = j
		case unicode.IsLetter(r):
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			segs = append(segs, Segment{Text: string(runes[i:j]), Kind: KindAlpha, Sep: flushSep()})
			i = j
		default:
			sep.WriteRune(r)
			i++
		}
	}
	return segs
}

// IsEmpty reports whether the number carries no segments.
func (p ParsedNumber) IsEmpty() bool {
	return len(p.Segments) == 0
}

// IsNumeric reports whether every segment is a digit run.
func (p ParsedNumber) IsNumeric() bool {
	if len(p.Segments) == 0 {
		return false
	}
	for _, s := range p.Segments {
		if s.Kind != KindNumeric {
			return false
		}
	}
	return true
}

// IntegerPart returns the segments before the first fractional separator.
func (p ParsedNumber) IntegerPart() []Segment {
	for i, s := range p.Segments {
		if s.Fractional() {
			return p.Segments[:i]
		}
	}
	return p.Segments
}

// FractionPart returns the segments from the first fractional separator on.
func (p ParsedNumber) FractionPart() []Segment {
	for i, s := range p.Segments {
		if s.Fractional() {
			return p.Segments[i:]
		}
	}
	return nil
}

// Canonical re-serializes the number: table prefix, then segments joined by
// their separators.
func (p ParsedNumber) Canonical() string {
	var sb strings.Builder
	sb.WriteString(p.TablePrefix)
	if p.TablePrefix != "" && len(p.Segments) > 0 {
		sb.WriteByte('-')
	}
	for i, s := range p.Segments {
		if i > 0 || s.Fractional() {
			sb.WriteString(s.Sep)
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// String returns the canonical form.
func (p ParsedNumber) String() string {
	return p.Canonical()
}

// Compare orders two numbers. Table prefixes compare first (no prefix sorts
// first), then segments pairwise: numeric before alphabetic, a segment that
// continues the integer part before one that opens a fraction, digit strings
// lexicographically. A proper prefix sorts before its extensions.
func Compare(a, b ParsedNumber) int {
	if c := strings.Compare(a.TablePrefix, b.TablePrefix); c != 0 {
		return c
	}
	n := min(len(a.Segments), len(b.Segments))
	for i := 0; i < n; i++ {
		if c := compareSegment(a.Segments[i], b.Segments[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a.Segments) < len(b.Segments):
		return -1
	case len(a.Segments) > len(b.Segments):
		return 1
	default:
		return 0
	}
}

func compareSegment(a, b Segment) int {
	if a.Kind != b.Kind {
		if a.Kind == KindNumeric {
			return -1
		}
		return 1
	}
	if a.Fractional() != b.Fractional() {
		if b.Fractional() {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Text, b.Text)
}

// Equal reports canonical equality.
func (p ParsedNumber) Equal(other ParsedNumber) bool {
	return Compare(p, other) == 0
}

// HasPrefix reports whether prefix is a segment prefix of p: same table
// prefix, equal leading segments, and a last segment whose text p's
// corresponding segment starts with. "026.09" has prefix "026.0".
func (p ParsedNumber) HasPrefix(prefix ParsedNumber) bool {
	if p.TablePrefix != prefix.TablePrefix {
		return false
	}
	if len(prefix.Segments) == 0 {
		return true
	}
	if len(prefix.Segments) > len(p.Segments) {
		return false
	}
	last := len(prefix.Segments) - 1
	for i := 0; i < last; i++ {
		if compareSegment(p.Segments[i], prefix.Segments[i]) != 0 {
			return false
		}
	}
	ps, qs := p.Segments[last], prefix.Segments[last]
	return ps.Kind == qs.Kind &&
		ps.Fractional() == qs.Fractional() &&
		strings.HasPrefix(ps.Text, qs.Text)
}
