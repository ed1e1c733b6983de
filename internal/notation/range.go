package notation

import (
	"regexp"
	"strings"
)

// Quality grades how faithfully a range was parsed.
type Quality uint8

const (
	// QualityExact means both bounds parsed as numbers with lower <= upper.
	QualityExact Quality = iota
	// QualityLoosePrefix means the upper bound was a short form padded from
	// the lower bound ("920.03-.09", "001-8").
	QualityLoosePrefix
	// QualityMalformedFallback means the bounds could not be ordered; the
	// range covers numbers sharing the lower bound's integer part.
	QualityMalformedFallback
)

// String returns the quality name used in diagnostics.
func (q Quality) String() string {
	switch q {
	case QualityExact:
		return "exact"
	case QualityLoosePrefix:
		return "loose-prefix"
	case QualityMalformedFallback:
		return "malformed-fallback"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// Range is an inclusive interval of notations.
type Range struct {
	Lower   ParsedNumber
	Upper   ParsedNumber
	Quality Quality
	Raw     string
}

// tagOnlyRe matches text that is nothing but a table tag, optionally with its
// hyphen; such a hyphen never separates range bounds.
var tagOnlyRe = regexp.MustCompile(`^[Tt][1-6][A-Ca-c]?\s*-?$`)

// splitRange finds the first hyphen whose left side is an all-numeric
// notation and whose right side is non-empty.
func splitRange(s string) (left, right string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}
		left = strings.TrimSpace(s[:i])
		if left == "" || tagOnlyRe.MatchString(left) {
			continue
		}
		right = strings.TrimSpace(s[i+1:])
		if right == "" {
			continue
		}
		if !ParseNumber(left).IsNumeric() {
			continue
		}
		return left, right, true
	}
	return "", "", false
}

// IsRangeText reports whether text contains a separating hyphen.
func IsRangeText(text string) bool {
	_, _, ok := splitRange(strings.TrimSpace(text))
	return ok
}

// ParseRange parses "lower-upper". Text without a separating hyphen yields a
// degenerate range whose bounds are the same number.
func ParseRange(text string) Range {
	left, right, ok := splitRange(strings.TrimSpace(text))
	if !ok {
		n := ParseNumber(text)
		q := QualityExact
		if !n.IsNumeric() {
			q = QualityMalformedFallback
		}
		return Range{Lower: n, Upper: n, Quality: q, Raw: text}
	}
	return buildRange(text, ParseNumber(left), ParseNumber(right))
}

func buildRange(raw string, lower, upper ParsedNumber) Range {
	r := Range{Raw: raw, Lower: lower, Upper: upper}
	if !upper.IsNumeric() {
		r.Quality = QualityMalformedFallback
		return r
	}

	if upper.TablePrefix == "" {
		upper.TablePrefix = lower.TablePrefix
	}
	r.Quality = QualityExact
	if padded, ok := padLoose(lower, upper); ok {
		upper = padded
		r.Quality = QualityLoosePrefix
	}
	r.Upper = upper

	if Compare(lower, upper) > 0 {
		r.Quality = QualityMalformedFallback
	}
	return r
}

// padLoose expands a short upper bound using the lower bound's higher-order
// digits. Three short forms are recognized:
//
//	920.03-.09  -> 920.09  (fraction only)
//	001-8       -> 008     (fewer integer digits)
//	641.5-9     -> 641.9   (bare digits replacing the trailing fraction)
func padLoose(lower, upper ParsedNumber) (ParsedNumber, bool) {
	lowerInt := lower.IntegerPart()
	if len(upper.Segments) > 0 && upper.Segments[0].Fractional() {
		if len(lowerInt) == 0 {
			return upper, false
		}
		segs := make([]Segment, 0, len(lowerInt)+len(upper.Segments))
		segs = append(segs, lowerInt...)
		segs = append(segs, upper.Segments...)
		return withSegments(upper, segs), true
	}

	upperInt := upper.IntegerPart()
	if len(lowerInt) != 1 || len(upperInt) != 1 {
		return upper, false
	}
	l, u := lowerInt[0].Text, upperInt[0].Text
	if len(u) >= len(l) {
		return upper, false
	}

	lowerFrac := lower.FractionPart()
	if len(upper.FractionPart()) == 0 && len(lowerFrac) > 0 && len(u) <= len(lowerFrac[0].Text) {
		f := lowerFrac[0].Text
		segs := []Segment{
			{Text: l, Kind: KindNumeric},
			{Text: f[:len(f)-len(u)] + u, Kind: KindNumeric, Sep: "."},
		}
		return withSegments(upper, segs), true
	}

	segs := []Segment{{Text: l[:len(l)-len(u)] + u, Kind: KindNumeric}}
	segs = append(segs, upper.FractionPart()...)
	return withSegments(upper, segs), true
}

func withSegments(p ParsedNumber, segs []Segment) ParsedNumber {
	return ParsedNumber{TablePrefix: p.TablePrefix, Segments: segs, Raw: p.Raw}
}

// DeclaredPrefix returns the segments a malformed-fallback range covers by:
// the lower bound's integer part (the whole lower bound when it has no
// decimal point). When the lower bound has a fraction, covered queries must
// also continue with a decimal point.
func (r Range) DeclaredPrefix() []Segment {
	return r.Lower.IntegerPart()
}

// Covers reports whether q falls within the range. Exact and loose-prefix
// ranges test lower <= q <= upper; malformed-fallback ranges test that q
// shares the declared prefix under the same table prefix.
func (r Range) Covers(q ParsedNumber) bool {
	if q.IsEmpty() {
		return false
	}
	switch r.Quality {
	case QualityExact, QualityLoosePrefix:
		return Compare(r.Lower, q) <= 0 && Compare(q, r.Upper) <= 0
	default:
		prefix := r.DeclaredPrefix()
		if len(prefix) == 0 || q.TablePrefix != r.Lower.TablePrefix || len(q.Segments) < len(prefix) {
			return false
		}
		for i := range prefix {
			if compareSegment(prefix[i], q.Segments[i]) != 0 {
				return false
			}
		}
		if len(r.Lower.FractionPart()) > 0 {
			return len(q.Segments) > len(prefix) && q.Segments[len(prefix)].Fractional()
		}
		return true
	}
}

// String renders the range with canonical bounds.
func (r Range) String() string {
	return r.Lower.Canonical() + "-" + r.Upper.Canonical()
}
