package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/ddcquery/internal/corpus"
)

const uriScheme = "ddc://"

// registerResources exposes the source list and each source's documents.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Loaded DDC sources with document counts",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{source}",
		Name:        "source-documents",
		Description: "All documents of one source in insertion order",
		MIMEType:    "application/json",
	}, s.handleSourceDocumentsResource)
}

func (s *Server) handleSourcesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.handleStats(ctx).Sources)
}

func (s *Server) handleSourceDocumentsResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	name := strings.TrimPrefix(req.Params.URI, uriScheme+"sources/")
	tag, ok := corpus.ParseSourceTag(name)
	if !ok {
		return nil, NewResourceNotFoundError(req.Params.URI)
	}
	idx, ok := s.querier.Engine().Corpus().Index(tag)
	if !ok {
		return nil, NewResourceNotFoundError(req.Params.URI)
	}

	docs := make([]*corpus.Document, idx.Len())
	for ord := range docs {
		docs[ord] = idx.Doc(ord)
	}
	return jsonResource(req.Params.URI, docs)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
