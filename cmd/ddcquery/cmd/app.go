package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/ddcquery/internal/config"
	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/embed"
	"github.com/Aman-CERP/ddcquery/internal/errors"
	"github.com/Aman-CERP/ddcquery/internal/querier"
	"github.com/Aman-CERP/ddcquery/internal/search"
)

// app is the wired retrieval stack for one command invocation.
type app struct {
	querier  *querier.Querier
	embedder embed.Embedder // nil when the provider could not start
	report   *corpus.LoadReport
}

// loadCorpus reads the SQLite database when one is configured, otherwise the
// corpus directory.
func loadCorpus(ctx context.Context, cfg *config.Config) (*corpus.Corpus, *corpus.LoadReport, error) {
	if cfg.Corpus.SQLitePath != "" {
		return corpus.LoadSQLite(ctx, cfg.Corpus.SQLitePath)
	}
	return corpus.LoadDir(cfg.Corpus.Dir)
}

// newApp loads the corpus and wires engine and querier. A semantic provider
// that fails to start is logged and left out; queries then report semantic
// similarity as unavailable.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	c, report, err := loadCorpus(ctx, cfg)
	if err != nil {
		return nil, err
	}
	for _, tag := range report.FailedSources() {
		attrs := append([]any{"source", tag.String()}, errors.LogAttrs(report.Failed[tag])...)
		slog.Warn("corpus_source_skipped", attrs...)
	}

	matcher, err := search.NewTextMatcher(0)
	if err != nil {
		return nil, fmt.Errorf("failed to create text matcher: %w", err)
	}
	opts := []search.EngineOption{
		search.WithTextMatcher(matcher),
		search.WithLogger(slog.Default()),
	}

	a := &app{report: report}
	embedder, err := newEmbedder(ctx, cfg.Embeddings)
	if err != nil {
		slog.Warn("semantic_provider_unavailable", errors.LogAttrs(err)...)
	} else {
		sim, serr := search.NewEmbeddingSimilarity(embedder, nil)
		if serr != nil {
			_ = embedder.Close()
			return nil, serr
		}
		a.embedder = embedder
		opts = append(opts,
			search.WithSimilarity(embedder.ModelName(), sim),
			search.WithDefaultSemanticModel(cfg.Search.SemanticModel))
	}

	engine, err := search.NewEngine(c, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.querier, err = querier.New(engine,
		querier.WithParallelism(cfg.Search.Workers),
		querier.WithLogger(slog.Default()))
	if err != nil {
		a.Close()
		return nil, err
	}

	slog.Info("corpus_loaded",
		slog.Int("documents", c.Len()),
		slog.Int("sources", len(c.Sources())),
		slog.Int("skipped_docs", report.SkippedDocs))
	return a, nil
}

func newEmbedder(ctx context.Context, cfg config.EmbeddingsConfig) (embed.Embedder, error) {
	provider, err := embed.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return embed.NewEmbedder(ctx, provider, embed.Options{
		Model:      cfg.Model,
		OllamaHost: cfg.OllamaHost,
		CacheSize:  cfg.CacheSize,
	})
}

// Close releases the embedder.
func (a *app) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
}
