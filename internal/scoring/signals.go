// Package scoring combines per-document evidence signals into one bounded
// relevance score.
package scoring

import (
	"encoding/json"
	"sort"
)

// Signal identifies one kind of evidence. The set is closed.
type Signal uint8

const (
	SignalExactNumber Signal = iota
	SignalRangeContainment
	SignalHeadingFuzzy
	SignalKeywordCoverage
	SignalSemanticSimilarity
	SignalStdSubdivisionBonus

	numSignals
)

var signalNames = [numSignals]string{
	SignalExactNumber:         "exact_number",
	SignalRangeContainment:    "range_containment",
	SignalHeadingFuzzy:        "heading_fuzzy",
	SignalKeywordCoverage:     "keyword_coverage",
	SignalSemanticSimilarity:  "semantic_similarity",
	SignalStdSubdivisionBonus: "std_subdivision_bonus",
}

// String returns the signal's wire name.
func (s Signal) String() string {
	if s >= numSignals {
		return "unknown"
	}
	return signalNames[s]
}

// ParseSignal resolves a wire name.
func ParseSignal(name string) (Signal, bool) {
	for i, n := range signalNames {
		if n == name {
			return Signal(i), true
		}
	}
	return 0, false
}

// AllSignals returns every signal in declaration order.
func AllSignals() []Signal {
	out := make([]Signal, numSignals)
	for i := range out {
		out[i] = Signal(i)
	}
	return out
}

// Signals is a fixed-size record of signal values with a presence mask.
// The zero value holds no signals.
type Signals struct {
	values  [numSignals]float64
	present uint8
}

// Set records a value, clamped to [0,1].
func (s *Signals) Set(sig Signal, v float64) {
	if sig >= numSignals {
		return
	}
	s.values[sig] = clamp01(v)
	s.present |= 1 << sig
}

// Clear removes a signal.
func (s *Signals) Clear(sig Signal) {
	if sig >= numSignals {
		return
	}
	s.values[sig] = 0
	s.present &^= 1 << sig
}

// Get returns the value of a signal, 0 when absent.
func (s Signals) Get(sig Signal) float64 {
	if sig >= numSignals {
		return 0
	}
	return s.values[sig]
}

// Has reports whether a signal was recorded.
func (s Signals) Has(sig Signal) bool {
	return sig < numSignals && s.present&(1<<sig) != 0
}

// Len returns the number of recorded signals.
func (s Signals) Len() int {
	n := 0
	for i := Signal(0); i < numSignals; i++ {
		if s.Has(i) {
			n++
		}
	}
	return n
}

// Map returns the recorded signals keyed by wire name.
func (s Signals) Map() map[string]float64 {
	out := make(map[string]float64, s.Len())
	for i := Signal(0); i < numSignals; i++ {
		if s.Has(i) {
			out[signalNames[i]] = s.values[i]
		}
	}
	return out
}

// Names returns the wire names of recorded signals in declaration order.
func (s Signals) Names() []string {
	var out []string
	for i := Signal(0); i < numSignals; i++ {
		if s.Has(i) {
			out = append(out, signalNames[i])
		}
	}
	return out
}

// FromMap builds a record from wire names. Unknown names are ignored.
func FromMap(m map[string]float64) Signals {
	var s Signals
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if sig, ok := ParseSignal(k); ok {
			s.Set(sig, m[k])
		}
	}
	return s
}

// MarshalJSON encodes the recorded signals as an object.
func (s Signals) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// UnmarshalJSON decodes an object of signal values.
func (s *Signals) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = FromMap(m)
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
