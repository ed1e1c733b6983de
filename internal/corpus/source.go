// Package corpus holds the DDC reference documents: one read-only Index per
// source (schedules, range schedules, manuals, auxiliary tables), and the
// loaders that build them from files or SQLite.
package corpus

import (
	"fmt"
	"strings"
)

// SourceTag identifies a reference source. The set is closed and its
// declaration order is the ranking priority used to break score ties:
// schedules, range schedules, manuals, flowchart manuals, tables.
type SourceTag uint8

const (
	SourceSch2 SourceTag = iota
	SourceSch3
	SourceSch2Ranges
	SourceSch3Ranges
	SourceManSc
	SourceManTB
	SourceManScFlow
	SourceManTBFlow
	SourceT1
	SourceT2
	SourceT3A
	SourceT3B
	SourceT3C

	numSources
)

var sourceNames = [numSources]string{
	SourceSch2:       "Sch2",
	SourceSch3:       "Sch3",
	SourceSch2Ranges: "Sch2_ranges",
	SourceSch3Ranges: "Sch3_ranges",
	SourceManSc:      "ManSc",
	SourceManTB:      "ManTB",
	SourceManScFlow:  "ManSc_flow",
	SourceManTBFlow:  "ManTB_flow",
	SourceT1:         "T1",
	SourceT2:         "T2",
	SourceT3A:        "T3A",
	SourceT3B:        "T3B",
	SourceT3C:        "T3C",
}

// String returns the tag's wire name.
func (s SourceTag) String() string {
	if s >= numSources {
		return fmt.Sprintf("SourceTag(%d)", uint8(s))
	}
	return sourceNames[s]
}

// ParseSourceTag resolves a wire name. Matching ignores case.
func ParseSourceTag(name string) (SourceTag, bool) {
	name = strings.TrimSpace(name)
	for i, n := range sourceNames {
		if strings.EqualFold(n, name) {
			return SourceTag(i), true
		}
	}
	return 0, false
}

// AllSources returns every tag in priority order.
func AllSources() []SourceTag {
	out := make([]SourceTag, numSources)
	for i := range out {
		out[i] = SourceTag(i)
	}
	return out
}

// Priority is the tie-break rank; lower ranks first.
func (s SourceTag) Priority() int {
	return int(s)
}

// IsSchedule reports whether the tag is a normal schedule (Sch2, Sch3).
func (s SourceTag) IsSchedule() bool {
	return s == SourceSch2 || s == SourceSch3
}

// IsRangeSchedule reports whether the tag is a range-variant schedule.
func (s SourceTag) IsRangeSchedule() bool {
	return s == SourceSch2Ranges || s == SourceSch3Ranges
}

// IsManual reports whether the tag is a manual or manual flowchart.
func (s SourceTag) IsManual() bool {
	return s >= SourceManSc && s <= SourceManTBFlow
}

// IsTable reports whether the tag is an auxiliary table.
func (s SourceTag) IsTable() bool {
	return s >= SourceT1 && s < numSources
}

// MarshalText implements encoding.TextMarshaler.
func (s SourceTag) MarshalText() ([]byte, error) {
	if s >= numSources {
		return nil, fmt.Errorf("invalid source tag %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SourceTag) UnmarshalText(text []byte) error {
	tag, ok := ParseSourceTag(string(text))
	if !ok {
		return fmt.Errorf("unknown source tag %q", string(text))
	}
	*s = tag
	return nil
}
