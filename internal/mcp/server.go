package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/ddcquery/internal/config"
	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/embed"
	"github.com/Aman-CERP/ddcquery/internal/notation"
	"github.com/Aman-CERP/ddcquery/internal/querier"
	"github.com/Aman-CERP/ddcquery/pkg/version"
)

const serverName = "ddcquery"

// Server is the MCP server for ddcquery. It bridges AI clients with the
// retrieval engine.
type Server struct {
	mcp      *mcp.Server
	querier  *querier.Querier
	embedder embed.Embedder // may be nil; reported as unavailable
	config   *config.Config
	logger   *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var toolInfos = []ToolInfo{
	{
		Name:        "ddc_query",
		Description: "Retrieve Dewey Decimal reference documents for candidate numbers and keywords. Every hit carries the signals behind its score, and diagnostics explain dropped sources, range fallbacks and semantic availability.",
	},
	{
		Name:        "ddc_parse",
		Description: "Explain how a DDC notation is parsed: single number, range with its parse quality, or a 'vs' comparison.",
	},
	{
		Name:        "ddc_stats",
		Description: "Report loaded sources with document counts, query counters and the active semantic provider.",
	},
}

// NewServer creates a new MCP server over q. embedder is used only for
// capability reporting.
func NewServer(q *querier.Querier, embedder embed.Embedder, cfg *config.Config) (*Server, error) {
	if q == nil {
		return nil, errors.New("querier is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		querier:  q,
		embedder: embedder,
		config:   cfg,
		logger:   slog.Default(),
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	out := make([]ToolInfo, len(toolInfos))
	copy(out, toolInfos)
	return out
}

// CallTool invokes a tool by name with loosely typed arguments. ddc_query
// returns markdown; the other tools return their typed output.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "ddc_query":
		var input QueryInput
		if err := decodeArgs(args, &input); err != nil {
			return nil, err
		}
		resp, err := s.execute(ctx, input)
		if err != nil {
			return nil, MapError(err)
		}
		return FormatQueryResponse(resp), nil
	case "ddc_parse":
		var input ParseInput
		if err := decodeArgs(args, &input); err != nil {
			return nil, err
		}
		return s.handleParse(input)
	case "ddc_stats":
		return s.handleStats(ctx), nil
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func decodeArgs(args map[string]any, out any) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return NewInvalidParamsError(err.Error())
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewInvalidParamsError(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        toolInfos[0].Name,
		Description: toolInfos[0].Description,
	}, s.mcpQueryHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        toolInfos[1].Name,
		Description: toolInfos[1].Description,
	}, s.mcpParseHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        toolInfos[2].Name,
		Description: toolInfos[2].Description,
	}, s.mcpStatsHandler)

	s.logger.Debug("mcp_tools_registered", slog.Int("count", len(toolInfos)))
}

func (s *Server) mcpQueryHandler(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (
	*mcp.CallToolResult,
	QueryOutput,
	error,
) {
	resp, err := s.execute(ctx, input)
	if err != nil {
		return nil, QueryOutput{}, MapError(err)
	}
	return nil, ToQueryOutput(resp), nil
}

func (s *Server) mcpParseHandler(_ context.Context, _ *mcp.CallToolRequest, input ParseInput) (
	*mcp.CallToolResult,
	ParseOutput,
	error,
) {
	out, err := s.handleParse(input)
	if err != nil {
		return nil, ParseOutput{}, err
	}
	return nil, *out, nil
}

func (s *Server) mcpStatsHandler(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (
	*mcp.CallToolResult,
	StatsOutput,
	error,
) {
	return nil, *s.handleStats(ctx), nil
}

// execute runs a ddc_query input through the querier.
func (s *Server) execute(ctx context.Context, input QueryInput) (*querier.Response, error) {
	start := time.Now()
	req := BuildRequest(input, s.config.Search)
	resp, err := s.querier.Execute(ctx, req)
	if err != nil {
		s.logger.Error("ddc_query_failed", slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.Info("ddc_query_completed",
		slog.String("request_id", resp.RequestID),
		slog.Int("hits", len(resp.Hits)),
		slog.Duration("duration", time.Since(start)))
	return resp, nil
}

// BuildRequest fills a querier request from tool input, taking omitted
// limits and options from defaults. No sources means every source.
func BuildRequest(input QueryInput, defaults config.SearchConfig) *querier.Request {
	req := &querier.Request{
		Numbers:  input.Numbers,
		Keywords: input.Keywords,
		Facets:   make(map[string]*string, len(input.Facets)),
		Sources:  input.Sources,
		Limits: querier.Limits{
			KPerSource: defaults.KPerSource,
			MaxDocs:    defaults.MaxDocs,
		},
		Options: querier.Options{
			ExpandSynonyms:         defaults.ExpandSynonyms,
			IncludeStdSubdivisions: defaults.IncludeStdSubdivisions,
			UseSemantic:            input.UseSemantic,
			SemanticModel:          defaults.SemanticModel,
		},
	}
	for k, v := range input.Facets {
		req.Facets[k] = &v
	}
	if len(req.Sources) == 0 {
		for _, tag := range corpus.AllSources() {
			req.Sources = append(req.Sources, tag.String())
		}
	}
	if input.KPerSource != 0 {
		req.Limits.KPerSource = input.KPerSource
	}
	if input.MaxDocs != 0 {
		req.Limits.MaxDocs = input.MaxDocs
	}
	if input.ExpandSynonyms != nil {
		req.Options.ExpandSynonyms = *input.ExpandSynonyms
	}
	if input.IncludeStdSubdivisions != nil {
		req.Options.IncludeStdSubdivisions = *input.IncludeStdSubdivisions
	}
	if input.SemanticModel != "" {
		req.Options.SemanticModel = input.SemanticModel
	}
	w := defaults.SemanticWeight
	if input.SemanticWeight != nil {
		w = *input.SemanticWeight
	}
	req.Options.SemanticWeight = &w
	return req
}

// ToQueryOutput flattens a response for structured tool output.
func ToQueryOutput(resp *querier.Response) QueryOutput {
	out := QueryOutput{
		RequestID:      resp.RequestID,
		Hits:           make([]HitOutput, 0, len(resp.Hits)),
		NumbersFound:   resp.NumbersFound,
		RoundRelevance: resp.RoundRelevance(),
		Diagnostics:    resp.Diagnostics,
	}
	for _, h := range resp.Hits {
		out.Hits = append(out.Hits, HitOutput{
			Source:              h.Key.Source.String(),
			Number:              h.Document.Number,
			Heading:             h.Document.Heading,
			Description:         h.Document.Description,
			Score:               h.Score,
			Signals:             h.Signals.Map(),
			MatchedNumbers:      h.MatchedNumbers,
			RangeFallback:       h.Fallback,
			StdSubdivisionProbe: h.Probe,
		})
	}
	return out
}

func (s *Server) handleParse(input ParseInput) (*ParseOutput, error) {
	if strings.TrimSpace(input.Notation) == "" {
		return nil, NewInvalidParamsError("notation parameter is required")
	}
	return ExplainNotation(input.Notation), nil
}

// ExplainNotation describes the parse of raw.
func ExplainNotation(raw string) *ParseOutput {
	n := notation.ParseNotation(raw)
	out := &ParseOutput{Raw: n.Raw, Form: n.Form.String()}
	for _, p := range n.Numbers {
		out.Numbers = append(out.Numbers, NumberOutput{
			Raw:         p.Raw,
			TablePrefix: p.TablePrefix,
			Canonical:   p.Canonical(),
		})
	}
	for _, r := range n.Ranges {
		out.Ranges = append(out.Ranges, RangeOutput{
			Raw:     r.Raw,
			Lower:   r.Lower.Canonical(),
			Upper:   r.Upper.Canonical(),
			Quality: r.Quality.String(),
		})
	}
	return out
}

func (s *Server) handleStats(ctx context.Context) *StatsOutput {
	engine := s.querier.Engine()
	c := engine.Corpus()
	counts := c.Counts()

	out := &StatsOutput{
		Sources:        make([]SourceStat, 0, len(counts)),
		TotalDocuments: c.Len(),
		Usage:          s.querier.Stats(),
		Semantic: SemanticInfo{
			Models:       engine.SemanticModels(),
			DefaultModel: engine.DefaultSemanticModel(),
			Status:       "none",
		},
	}
	for _, tag := range c.Sources() {
		out.Sources = append(out.Sources, SourceStat{Source: tag.String(), Documents: counts[tag]})
	}
	if s.embedder != nil {
		out.Semantic.Provider = s.embedder.ModelName()
		out.Semantic.Dimensions = s.embedder.Dimensions()
		out.Semantic.Status = "unavailable"
		if s.embedder.Available(ctx) {
			out.Semantic.Status = "ready"
		}
	}
	return out
}

// Serve runs the server on transport until ctx is canceled.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp_server_stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}
