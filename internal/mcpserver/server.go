// Package mcpserver exposes identifier resolution, retrieval and library
// search as MCP tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matsen/learner/internal/record"
	"github.com/matsen/learner/internal/retriever"
	"github.com/matsen/learner/internal/storage"
)

// ErrMissingRetrievers is returned when no retriever holder is provided.
var ErrMissingRetrievers = errors.New("mcpserver: retriever holder is required")

// Store is the part of the library the tools read and write.
type Store interface {
	Add(ctx context.Context, rec *record.Record) (string, error)
	Query(ctx context.Context, c storage.Criteria) ([]record.Record, error)
}

// Deps are the collaborators behind the tools. Fetcher and Store are
// optional; tools that need them are not registered without them.
type Deps struct {
	Retrievers *retriever.Holder
	Fetcher    retriever.Fetcher
	Store      Store
}

// Validate ensures required collaborators are set.
func (d *Deps) Validate() error {
	if d.Retrievers == nil || d.Retrievers.Set() == nil {
		return ErrMissingRetrievers
	}
	return nil
}

// Server is the learner MCP server.
type Server struct {
	deps   Deps
	server *mcp.Server
}

// New creates a server and registers its tools.
func New(deps Deps, version string) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("validating deps: %w", err)
	}

	s := &Server{
		deps:   deps,
		server: mcp.NewServer(&mcp.Implementation{Name: "learner", Version: version}, nil),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
