package mcp

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/ddcquery/internal/querier"
	"github.com/Aman-CERP/ddcquery/internal/scoring"
)

// FormatQueryResponse renders a response as markdown for chat clients.
func FormatQueryResponse(resp *querier.Response) string {
	var sb strings.Builder

	if len(resp.Hits) == 0 {
		sb.WriteString("No DDC documents matched.\n")
	} else {
		sb.WriteString(fmt.Sprintf("## DDC Hits (%d)\n\n", len(resp.Hits)))
		sb.WriteString("| # | Source | Number | Heading | Score | Signals |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for i, h := range resp.Hits {
			sb.WriteString(fmt.Sprintf("| %d | %s | `%s` | %s | %.3f | %s |\n",
				i+1, h.Key.Source, h.Document.Number, escapeCell(h.Document.Heading),
				h.Score, FormatSignals(h.Signals)))
		}
		sb.WriteString(fmt.Sprintf("\nRound relevance: %.3f\n", resp.RoundRelevance()))
	}

	if len(resp.NumbersFound) > 0 {
		sb.WriteString(fmt.Sprintf("\nNumbers found: %s\n", strings.Join(resp.NumbersFound, ", ")))
	}

	if notes := DiagnosticNotes(resp.Diagnostics); len(notes) > 0 {
		sb.WriteString("\n### Diagnostics\n\n")
		for _, n := range notes {
			sb.WriteString("- " + n + "\n")
		}
	}
	return sb.String()
}

// DiagnosticNotes lists the diagnostics worth a reader's attention.
func DiagnosticNotes(d querier.Diagnostics) []string {
	var notes []string
	if len(d.DroppedSources) > 0 {
		notes = append(notes, "Unknown sources ignored: "+strings.Join(d.DroppedSources, ", "))
	}
	if len(d.MissingSources) > 0 {
		notes = append(notes, "Sources not loaded: "+strings.Join(d.MissingSources, ", "))
	}
	for _, c := range d.ClampedLimits {
		notes = append(notes, "Limit adjusted: "+c)
	}
	if len(d.FallbackRanges) > 0 {
		notes = append(notes, "Malformed ranges matched by fallback: "+strings.Join(d.FallbackRanges, ", "))
	}
	if d.StdSubdivisionHits > 0 {
		notes = append(notes, fmt.Sprintf("Standard subdivision hits: %d", d.StdSubdivisionHits))
	}
	if d.SemanticUnavailable {
		msg := "Semantic similarity unavailable"
		if d.SemanticNote != "" {
			msg += ": " + d.SemanticNote
		}
		notes = append(notes, msg)
	} else if d.SemanticNote != "" {
		notes = append(notes, d.SemanticNote)
	}
	if d.LiteratureTableHint != "" {
		notes = append(notes, "Literature facets suggest Table "+strings.TrimPrefix(d.LiteratureTableHint, "T"))
	}
	return notes
}

// FormatSignals lists non-zero signals in declaration order, or "-".
func FormatSignals(s scoring.Signals) string {
	var parts []string
	for _, sig := range scoring.AllSignals() {
		if v := s.Get(sig); v > 0 {
			parts = append(parts, fmt.Sprintf("%s=%.2f", sig, v))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
