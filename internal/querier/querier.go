// Package querier is the entry point for retrieval requests. It validates a
// request, fans it out to the search engine per source, merges the hits and
// compiles diagnostics.
package querier

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/errors"
	"github.com/Aman-CERP/ddcquery/internal/scoring"
	"github.com/Aman-CERP/ddcquery/internal/search"
)

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = stderrors.New("nil dependency")

// Querier executes requests. Safe for concurrent use; the only shared
// mutable state is the atomic usage counters.
type Querier struct {
	engine      *search.Engine
	parallelism int
	logger      *slog.Logger

	requests       atomic.Int64
	hits           atomic.Int64
	sourcesScanned atomic.Int64
}

// Option configures a Querier.
type Option func(*Querier)

// WithParallelism bounds concurrent per-source searches. 1 searches
// sources sequentially. Results are identical either way.
func WithParallelism(n int) Option {
	return func(q *Querier) {
		if n > 0 {
			q.parallelism = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(q *Querier) {
		if l != nil {
			q.logger = l
		}
	}
}

// New creates a Querier over engine.
func New(engine *search.Engine, opts ...Option) (*Querier, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: search engine is required", ErrNilDependency)
	}
	q := &Querier{
		engine:      engine,
		parallelism: runtime.GOMAXPROCS(0),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Engine returns the underlying engine.
func (q *Querier) Engine() *search.Engine {
	return q.engine
}

// Stats returns the cumulative counters.
func (q *Querier) Stats() Stats {
	return Stats{
		TotalRequests:  q.requests.Load(),
		TotalHits:      q.hits.Load(),
		SourcesScanned: q.sourcesScanned.Load(),
	}
}

// Execute runs req. Only a nil request is an error; unknown sources and
// non-positive limits are corrected and reported in the diagnostics.
func (q *Querier) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeNilRequest, "request is nil", nil)
	}
	start := time.Now()
	diag := Diagnostics{
		SourceCounts:     make(map[string]int),
		ReturnedBySource: make(map[string]int),
		TopSignals:       make(map[string]float64),
	}

	tags := q.resolveSources(req.Sources, &diag)
	kPerSource := clampLimit("k_per_source", req.Limits.KPerSource, &diag)
	maxDocs := clampLimit("max_docs", req.Limits.MaxDocs, &diag)

	query := search.Query{
		Numbers:                req.Numbers,
		Keywords:               req.Keywords,
		Facets:                 req.Facets,
		KPerSource:             kPerSource,
		ExpandSynonyms:         req.Options.ExpandSynonyms,
		IncludeStdSubdivisions: req.Options.IncludeStdSubdivisions,
		UseSemantic:            req.Options.UseSemantic,
		SemanticModel:          req.Options.SemanticModel,
	}
	if w := req.Options.SemanticWeight; w != nil {
		clamped := min(max(*w, 0), 1)
		if clamped != *w {
			diag.ClampedLimits = append(diag.ClampedLimits,
				fmt.Sprintf("semantic_weight: %s -> %s", formatFloat(*w), formatFloat(clamped)))
		}
		query.SemanticWeight = &clamped
	}
	pq := q.engine.Prepare(query)

	results := q.dispatch(ctx, pq, tags)

	var merged []*search.Hit
	for _, r := range results {
		name := r.Source.String()
		if r.Missing {
			diag.MissingSources = append(diag.MissingSources, name)
		}
		diag.SourceCounts[name] = len(r.Hits)
		if r.SemanticError != "" {
			if diag.SemanticErrors == nil {
				diag.SemanticErrors = make(map[string]string)
			}
			diag.SemanticErrors[name] = r.SemanticError
		}
		merged = append(merged, r.Hits...)
	}
	search.SortHits(merged)
	if len(merged) > maxDocs {
		merged = merged[:maxDocs]
	}
	if merged == nil {
		merged = []*search.Hit{}
	}

	summarizeHits(merged, &diag)
	q.semanticDiagnostics(pq, results, &diag)
	if tag, ok := corpus.LiteratureTableFor(req.Facets); ok {
		diag.LiteratureTableHint = tag.String()
	}

	resp := &Response{
		RequestID:    uuid.NewString(),
		Hits:         merged,
		NumbersFound: numbersFound(pq.Numbers(), merged),
		Diagnostics:  diag,
	}

	q.requests.Add(1)
	q.hits.Add(int64(len(merged)))
	q.sourcesScanned.Add(int64(len(tags)))

	q.logger.Debug("query_executed",
		slog.String("request_id", resp.RequestID),
		slog.Int("sources", len(tags)),
		slog.Int("hits", len(merged)),
		slog.Int("numbers_found", len(resp.NumbersFound)),
		slog.Duration("duration", time.Since(start)))
	return resp, nil
}

// resolveSources parses and deduplicates tags in request order. Unknown
// tags are dropped.
func (q *Querier) resolveSources(names []string, diag *Diagnostics) []corpus.SourceTag {
	var tags []corpus.SourceTag
	seen := make(map[corpus.SourceTag]bool)
	for _, name := range names {
		tag, ok := corpus.ParseSourceTag(name)
		if !ok {
			diag.DroppedSources = append(diag.DroppedSources, name)
			q.logger.Debug("source_dropped", slog.String("source", name))
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

func clampLimit(name string, v int, diag *Diagnostics) int {
	if v >= 1 {
		return v
	}
	diag.ClampedLimits = append(diag.ClampedLimits, fmt.Sprintf("%s: %d -> 1", name, v))
	return 1
}

// dispatch searches every tag. Results are stored by position so the merge
// sees the same input regardless of scheduling.
func (q *Querier) dispatch(ctx context.Context, pq *search.PreparedQuery, tags []corpus.SourceTag) []search.SourceResult {
	results := make([]search.SourceResult, len(tags))
	if q.parallelism <= 1 || len(tags) <= 1 {
		for i, tag := range tags {
			results[i] = q.engine.SearchPrepared(ctx, pq, tag)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.parallelism)
	for i, tag := range tags {
		g.Go(func() error {
			results[i] = q.engine.SearchPrepared(gctx, pq, tag)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// summarizeHits fills the per-hit aggregates of diag.
func summarizeHits(hits []*search.Hit, diag *Diagnostics) {
	signals := scoring.AllSignals()
	sums := make([]float64, len(signals))
	present := make([]bool, len(signals))
	for _, h := range hits {
		diag.ReturnedBySource[h.Key.Source.String()]++
		if h.Fallback {
			diag.FallbackRanges = append(diag.FallbackRanges, h.Document.Number)
		}
		if h.Probe {
			diag.StdSubdivisionHits++
		}
		for i, sig := range signals {
			if h.Signals.Has(sig) {
				sums[i] += h.Signals.Get(sig)
				present[i] = true
			}
		}
	}
	for i, sig := range signals {
		if present[i] {
			diag.TopSignals[sig.String()] = sums[i] / float64(len(hits))
		}
	}
}

func (q *Querier) semanticDiagnostics(pq *search.PreparedQuery, results []search.SourceResult, diag *Diagnostics) {
	if !pq.SemanticRequested {
		return
	}
	diag.SemanticModel = pq.SemanticModel()
	diag.SemanticNote = pq.SemanticNote
	diag.SemanticUnavailable = pq.SemanticUnavailable
	if len(diag.SemanticErrors) > 0 && len(diag.SemanticErrors) == len(results) {
		diag.SemanticUnavailable = true
	}
}

// numbersFound returns, in query order, the numbers some returned hit
// matches exactly.
func numbersFound(numbers []string, hits []*search.Hit) []string {
	matched := make(map[string]bool)
	for _, h := range hits {
		if h.Signals.Get(scoring.SignalExactNumber) < 1 {
			continue
		}
		for _, n := range h.MatchedNumbers {
			matched[n] = true
		}
	}
	out := make([]string, 0, len(matched))
	for _, n := range numbers {
		if matched[n] {
			out = append(out, n)
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
