package corpus

import (
	"sort"
	"strings"
)

// Facet keys consulted for literature routing.
var literatureFacetKeys = []string{"form", "genre", "subject", "topic"}

var literaryTerms = []string{
	"literature", "literary", "poetry", "poems", "poem", "fiction", "novel",
	"novels", "drama", "plays", "essays", "letters", "speeches", "satire",
	"humor", "short stories",
}

// Anthologies and works by more than one author use Table 3B.
var collectionTerms = []string{
	"anthology", "anthologies", "collection", "collections", "collected",
	"more than one author", "several authors", "history and criticism",
}

// Works about themes, subjects or persons in literature use Table 3C.
var themeTerms = []string{
	"theme", "themes", "motif", "motifs", "characters", "literature about",
	"in literature",
}

// LiteratureTableFor suggests the Table 3 variant for a work of literature
// described by facets. It returns false when nothing in the facets is
// literary. The suggestion is informational; callers decide whether to query
// the table.
func LiteratureTableFor(facets map[string]*string) (SourceTag, bool) {
	text := facetText(facets)
	if text == "" || !containsAny(text, literaryTerms) {
		return 0, false
	}
	switch {
	case containsAny(text, themeTerms):
		return SourceT3C, true
	case containsAny(text, collectionTerms):
		return SourceT3B, true
	default:
		return SourceT3A, true
	}
}

func facetText(facets map[string]*string) string {
	var parts []string
	for _, key := range literatureFacetKeys {
		if v, ok := facets[key]; ok && v != nil {
			parts = append(parts, strings.ToLower(*v))
		}
	}
	// Keys outside the known set still count, in sorted order.
	var extra []string
	for key, v := range facets {
		if v == nil || isLiteratureKey(key) {
			continue
		}
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		parts = append(parts, strings.ToLower(*facets[key]))
	}
	return strings.Join(parts, " ")
}

func isLiteratureKey(key string) bool {
	for _, k := range literatureFacetKeys {
		if k == key {
			return true
		}
	}
	return false
}

// containsAny matches terms at word starts so "plays" does not fire on
// "displays".
func containsAny(text string, terms []string) bool {
	padded := " " + text
	for _, t := range terms {
		if strings.Contains(padded, " "+t) {
			return true
		}
	}
	return false
}
