// Package mcp serves a generated documentation catalog to agents over the
// Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/apidoc/pkg/catalog"
	"github.com/gnana997/apidoc/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for apidoc, exposing catalog query tools.
type Server struct {
	mcpServer *server.MCPServer
	query     *catalog.QueryService
	logger    *mcplog.Logger // nil disables call logging
}

// NewServer creates a new MCP server backed by the given QueryService.
// A non-nil logger records every tool call as a JSONL entry.
func NewServer(qs *catalog.QueryService, logger *mcplog.Logger) *Server {
	s := &Server{query: qs, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("apidoc", serverVersion, opts...)

	s.mcpServer.AddTools(s.tools()...)

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: listModulesTool(), Handler: s.handleListModules},
		{Tool: getModuleTool(), Handler: s.handleGetModule},
		{Tool: getDeclarationTool(), Handler: s.handleGetDeclaration},
		{Tool: searchDeclarationsTool(), Handler: s.handleSearchDeclarations},
	}
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
