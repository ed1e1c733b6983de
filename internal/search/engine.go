package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/notation"
	"github.com/Aman-CERP/ddcquery/internal/scoring"
)

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = errors.New("nil dependency")

// Range credit by coverage quality.
const (
	rangeCredit          = 1.0
	malformedRangeCredit = 0.5
)

// Engine scans corpus sources. It holds no per-query state and is safe for
// concurrent use.
type Engine struct {
	corpus       *corpus.Corpus
	matcher      *TextMatcher
	expander     Expander
	similarities map[string]Similarity
	firstModel   string
	defaultModel string
	defaultNote  string // set when the configured default was not registered
	logger       *slog.Logger
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithExpander replaces the synonym expander. Nil disables expansion.
func WithExpander(x Expander) EngineOption {
	return func(e *Engine) {
		e.expander = x
	}
}

// WithSimilarity registers a semantic provider under a model name. The first
// registered provider is the default.
func WithSimilarity(model string, s Similarity) EngineOption {
	return func(e *Engine) {
		if s == nil || model == "" {
			return
		}
		e.similarities[model] = s
		if e.firstModel == "" {
			e.firstModel = model
		}
		if e.defaultModel == "" {
			e.defaultModel = model
		}
	}
}

// WithDefaultSemanticModel chooses which registered provider serves queries
// that name no model. An unregistered name falls back to the first registered
// provider and prepared queries carry a note saying so.
func WithDefaultSemanticModel(model string) EngineOption {
	return func(e *Engine) {
		if model != "" {
			e.defaultModel = model
		}
	}
}

// WithTextMatcher shares a matcher (and its term cache) between engines.
func WithTextMatcher(m *TextMatcher) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine over c.
func NewEngine(c *corpus.Corpus, opts ...EngineOption) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: corpus is required", ErrNilDependency)
	}
	e := &Engine{
		corpus:       c,
		expander:     NewSynonymExpander(),
		similarities: make(map[string]Similarity),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.matcher == nil {
		m, err := NewTextMatcher(0)
		if err != nil {
			return nil, fmt.Errorf("failed to create text matcher: %w", err)
		}
		e.matcher = m
	}
	if _, ok := e.similarities[e.defaultModel]; !ok {
		if e.defaultModel != "" && e.firstModel != "" {
			e.defaultNote = fmt.Sprintf("configured semantic model %q not registered; using %q",
				e.defaultModel, e.firstModel)
			e.logger.Warn("semantic_default_model_missing",
				slog.String("configured", e.defaultModel),
				slog.String("using", e.firstModel))
		}
		e.defaultModel = e.firstModel
	}
	return e, nil
}

// Corpus returns the searched corpus.
func (e *Engine) Corpus() *corpus.Corpus {
	return e.corpus
}

// SemanticModels returns the registered model names, sorted.
func (e *Engine) SemanticModels() []string {
	names := make([]string, 0, len(e.similarities))
	for name := range e.similarities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultSemanticModel returns the default provider name, or "" when none
// is registered.
func (e *Engine) DefaultSemanticModel() string {
	return e.defaultModel
}

type queryNumber struct {
	raw    string
	parsed notation.ParsedNumber
}

// probe is the standard-subdivision lookup pair of one query number.
type probe struct {
	parent notation.ParsedNumber
	child  notation.ParsedNumber
}

// PreparedQuery is a Query with numbers parsed, keywords analyzed and the
// semantic provider resolved. Prepare once and search many sources.
type PreparedQuery struct {
	numbers  []queryNumber
	keywords []keyword   // every variant, for heading similarity
	groups   [][]keyword // per original keyword, for coverage
	probes   []probe
	k        int

	similarity     Similarity
	semanticModel  string
	semanticText   string
	semanticWeight float64

	// SemanticRequested mirrors Query.UseSemantic.
	SemanticRequested bool
	// SemanticUnavailable is set when semantic scoring was requested but no
	// provider could serve it.
	SemanticUnavailable bool
	// SemanticNote explains provider substitution or unavailability.
	SemanticNote string
}

// Numbers returns the distinct query numbers in request order.
func (pq *PreparedQuery) Numbers() []string {
	out := make([]string, len(pq.numbers))
	for i, n := range pq.numbers {
		out[i] = n.raw
	}
	return out
}

// SemanticModel returns the provider that will score, or "".
func (pq *PreparedQuery) SemanticModel() string {
	return pq.semanticModel
}

// K returns the per-source hit cap.
func (pq *PreparedQuery) K() int {
	return pq.k
}

// Prepare parses and analyzes q.
func (e *Engine) Prepare(q Query) *PreparedQuery {
	pq := &PreparedQuery{k: max(q.KPerSource, 1), SemanticRequested: q.UseSemantic}

	seen := make(map[string]bool)
	for _, raw := range q.Numbers {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true
		pq.numbers = append(pq.numbers, queryNumber{raw: raw, parsed: notation.ParseNumber(raw)})
	}

	originals := normalizeKeywords(q.Keywords)
	flat := make(map[string]bool)
	for _, kw := range originals {
		variants := []string{kw}
		if q.ExpandSynonyms && e.expander != nil {
			variants = normalizeKeywords(e.expander.Expand([]string{kw}))
		}
		group := e.matcher.prepareKeywords(variants)
		pq.groups = append(pq.groups, group)
		for _, v := range group {
			if !flat[v.text] {
				flat[v.text] = true
				pq.keywords = append(pq.keywords, v)
			}
		}
	}

	if q.IncludeStdSubdivisions {
		pq.probes = stdSubdivisionProbes(pq.numbers)
	}

	if q.UseSemantic {
		e.resolveSemantic(pq, q, originals)
	}
	return pq
}

func (e *Engine) resolveSemantic(pq *PreparedQuery, q Query, keywords []string) {
	if len(e.similarities) == 0 || e.defaultModel == "" {
		pq.SemanticUnavailable = true
		pq.SemanticNote = "no semantic provider configured"
		return
	}
	model := q.SemanticModel
	if model == "" {
		model = e.defaultModel
		pq.SemanticNote = e.defaultNote
	} else if _, ok := e.similarities[model]; !ok {
		pq.SemanticNote = fmt.Sprintf("semantic model %q not registered; using %q", model, e.defaultModel)
		model = e.defaultModel
	}

	pq.semanticText = semanticQueryText(keywords, q.Facets)
	if pq.semanticText == "" {
		pq.SemanticUnavailable = true
		pq.SemanticNote = "no keywords or facets to compare semantically"
		return
	}
	pq.similarity = e.similarities[model]
	pq.semanticModel = model
	pq.semanticWeight = scoring.DefaultSemanticWeight
	if q.SemanticWeight != nil {
		pq.semanticWeight = min(max(*q.SemanticWeight, 0), 1)
	}
}

// semanticQueryText joins keywords with facet values in key order.
func semanticQueryText(keywords []string, facets map[string]*string) string {
	parts := append([]string(nil), keywords...)
	keys := make([]string, 0, len(facets))
	for k, v := range facets {
		if v != nil && strings.TrimSpace(*v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, strings.TrimSpace(*facets[k]))
	}
	return strings.Join(parts, " ")
}

// stdSubdivisionProbes derives probe pairs for numbers with no table prefix
// and a three-digit integer part. The child is the number itself when its
// fraction already starts with 0, else "<integer>.0".
func stdSubdivisionProbes(numbers []queryNumber) []probe {
	var out []probe
	seen := make(map[string]bool)
	for _, n := range numbers {
		p := n.parsed
		if p.TablePrefix != "" {
			continue
		}
		integer := p.IntegerPart()
		if len(integer) != 1 || integer[0].Kind != notation.KindNumeric || len(integer[0].Text) != 3 {
			continue
		}
		base := integer[0].Text
		child := notation.ParseNumber(base + ".0")
		if frac := p.FractionPart(); len(frac) > 0 && frac[0].Kind == notation.KindNumeric && strings.HasPrefix(frac[0].Text, "0") {
			child = p
		}
		key := base + "|" + child.Canonical()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, probe{parent: notation.ParseNumber(base), child: child})
	}
	return out
}

// Search runs q against one source.
func (e *Engine) Search(ctx context.Context, q Query, source corpus.SourceTag) SourceResult {
	return e.SearchPrepared(ctx, e.Prepare(q), source)
}

// candidate is the signal record of one document before ranking.
type candidate struct {
	ord      int
	signals  scoring.Signals
	matched  []string
	fallback bool
	probe    bool
}

// SearchPrepared runs a prepared query against one source. A missing source
// yields an empty result with Missing set. The context is only forwarded to
// the similarity provider.
func (e *Engine) SearchPrepared(ctx context.Context, pq *PreparedQuery, source corpus.SourceTag) SourceResult {
	result := SourceResult{Source: source}
	idx, ok := e.corpus.Index(source)
	if !ok {
		result.Missing = true
		e.logger.Debug("source_missing", slog.String("source", source.String()))
		return result
	}

	cands := make([]candidate, idx.Len())
	for ord := range cands {
		cands[ord] = e.baseSignals(pq, idx, ord)
	}

	if pq.similarity != nil {
		if err := e.semanticSignals(ctx, pq, idx, cands); err != nil {
			result.SemanticError = err.Error()
			e.logger.Warn("semantic_similarity_failed",
				slog.String("source", source.String()),
				slog.String("model", pq.semanticModel),
				slog.String("error", err.Error()))
			for i := range cands {
				cands[i].signals.Clear(scoring.SignalSemanticSimilarity)
			}
		}
	}

	for i := range cands {
		c := &cands[i]
		score := scoring.Combine(c.signals, pq.semanticWeight)
		if score == 0 {
			continue
		}
		result.Hits = append(result.Hits, &Hit{
			Key:            corpus.DocKey{Source: source, Ord: c.ord},
			Document:       idx.Doc(c.ord),
			Score:          score,
			Signals:        c.signals,
			MatchedNumbers: c.matched,
			Fallback:       c.fallback,
			Probe:          c.probe,
		})
	}
	result.Candidates = len(result.Hits)

	SortHits(result.Hits)
	if len(result.Hits) > pq.k {
		result.Hits = result.Hits[:pq.k]
	}

	e.logger.Debug("source_searched",
		slog.String("source", source.String()),
		slog.Int("documents", idx.Len()),
		slog.Int("candidates", result.Candidates),
		slog.Int("hits", len(result.Hits)))
	return result
}

// baseSignals computes every signal except semantic similarity.
func (e *Engine) baseSignals(pq *PreparedQuery, idx *corpus.Index, ord int) candidate {
	c := candidate{ord: ord}
	n := idx.Notation(ord)
	doc := idx.Doc(ord)

	exact, rng := 0.0, 0.0
	for _, qn := range pq.numbers {
		if n.Matches(qn.parsed) {
			exact = 1
			c.matched = append(c.matched, qn.raw)
		}
		if q, ok := n.Coverage(qn.parsed); ok {
			rng = max(rng, coverageCredit(q))
		}
	}

	bonus := 0.0
	source := idx.Source()
	for _, p := range pq.probes {
		switch {
		case source.IsRangeSchedule():
			if q, ok := n.Coverage(p.parent); ok {
				rng = max(rng, coverageCredit(q))
				bonus = 1
			}
		case source.IsSchedule():
			if n.DescendsFrom(p.child) {
				bonus = 1
			}
		}
	}
	c.fallback = rng == malformedRangeCredit

	c.signals.Set(scoring.SignalExactNumber, exact)
	c.signals.Set(scoring.SignalRangeContainment, rng)
	c.signals.Set(scoring.SignalHeadingFuzzy, e.matcher.headingSimilarity(doc.Heading, pq.keywords))
	c.signals.Set(scoring.SignalKeywordCoverage, e.matcher.coverage(doc.Text(), pq.groups))
	if bonus > 0 {
		c.signals.Set(scoring.SignalStdSubdivisionBonus, bonus)
		c.probe = true
	}
	return c
}

func coverageCredit(q notation.Quality) float64 {
	if q == notation.QualityMalformedFallback {
		return malformedRangeCredit
	}
	return rangeCredit
}

// semanticSignals scores every document against the query text. The first
// provider error aborts the pass.
func (e *Engine) semanticSignals(ctx context.Context, pq *PreparedQuery, idx *corpus.Index, cands []candidate) error {
	for i := range cands {
		text := idx.Doc(cands[i].ord).Text()
		if text == "" {
			continue
		}
		sim, err := pq.similarity.Similarity(ctx, pq.semanticText, text)
		if err != nil {
			return err
		}
		cands[i].signals.Set(scoring.SignalSemanticSimilarity, sim)
	}
	return nil
}

// CompareHits orders hits by score descending, then source priority, then
// insertion order.
func CompareHits(a, b *Hit) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Key.Source.Priority(), b.Key.Source.Priority()); c != 0 {
		return c
	}
	return cmp.Compare(a.Key.Ord, b.Key.Ord)
}

// SortHits sorts hits in place with CompareHits.
func SortHits(hits []*Hit) {
	slices.SortStableFunc(hits, CompareHits)
}
