package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matsen/learner/internal/record"
	"github.com/matsen/learner/internal/storage"
)

const defaultSearchLimit = 20

// ResolveInput is the input schema for the resolve tool.
type ResolveInput struct {
	Input string `json:"input" jsonschema:"a paper identifier or URL, e.g. 2301.07041 or a DOI"`
}

// ResolveOutput names the retriever that claims an identifier.
type ResolveOutput struct {
	Retriever  string `json:"retriever"`
	Source     string `json:"source"`
	Identifier string `json:"identifier"`
	URL        string `json:"url"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Input string `json:"input" jsonschema:"a paper identifier or URL"`
	Save  bool   `json:"save,omitempty" jsonschema:"add the record to the library"`
}

// RetrieveOutput carries a retrieved record.
type RetrieveOutput struct {
	ID     string         `json:"id,omitempty"`
	Record *record.Record `json:"record"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string `json:"query,omitempty" jsonschema:"full-text query over titles and abstracts"`
	Author string `json:"author,omitempty" jsonschema:"match author names containing this text"`
	Source string `json:"source,omitempty" jsonschema:"restrict to one source, e.g. arxiv"`
	Before string `json:"before,omitempty" jsonschema:"only papers published before this date (YYYY-MM-DD)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 20)"`
}

// SearchOutput lists matching records.
type SearchOutput struct {
	Records []record.Record `json:"records"`
	Count   int             `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve",
		Description: "Find which source an identifier belongs to and its canonical form",
	}, s.handleResolve)

	if s.deps.Fetcher != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Fetch a paper's metadata from its source, optionally saving it to the library",
		}, s.handleRetrieve)
	}

	if s.deps.Store != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search",
			Description: "Search papers in the library",
		}, s.handleSearch)
	}
}

func (s *Server) handleResolve(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	m, err := s.deps.Retrievers.Set().Sanitize(input.Input)
	if err != nil {
		return nil, ResolveOutput{}, err
	}
	return nil, ResolveOutput{
		Retriever:  m.Retriever.Name,
		Source:     m.Source(),
		Identifier: m.Identifier,
		URL:        m.Retriever.EndpointURL(m.Identifier),
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if input.Save && s.deps.Store == nil {
		return nil, RetrieveOutput{}, fmt.Errorf("no library open to save into")
	}

	rec, err := s.deps.Retrievers.Set().Retrieve(ctx, s.deps.Fetcher, input.Input)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	out := RetrieveOutput{Record: rec}
	if input.Save {
		id, err := s.deps.Store.Add(ctx, rec)
		if err != nil {
			return nil, RetrieveOutput{}, err
		}
		out.ID = id
	}
	return nil, out, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	c := storage.Criteria{
		Text:   input.Query,
		Author: input.Author,
		Source: input.Source,
		Limit:  limit,
	}
	if input.Before != "" {
		before, err := time.Parse("2006-01-02", input.Before)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("invalid before date %q: %w", input.Before, err)
		}
		c.Before = before
	}

	recs, err := s.deps.Store.Query(ctx, c)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if recs == nil {
		recs = []record.Record{}
	}
	return nil, SearchOutput{Records: recs, Count: len(recs)}, nil
}
