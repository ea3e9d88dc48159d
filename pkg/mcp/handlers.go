package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/apidoc/pkg/catalog"
)

// declarationResult is the response of get_declaration and one hit of
// search_declarations.
type declarationResult struct {
	Module      string               `json:"module"`
	Kind        string               `json:"kind,omitempty"`
	MatchReason string               `json:"match_reason,omitempty"`
	Declaration *catalog.Declaration `json:"declaration"`
}

func (s *Server) handleListModules(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keyword := req.GetString("keyword", "")
	return jsonResult(s.query.ListModules(keyword))
}

func (s *Server) handleGetModule(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	mod, ok := s.query.GetModule(name)
	if !ok {
		return mcp.NewToolResultError(s.notFound(fmt.Sprintf("module %q not found", name), name)), nil
	}
	return jsonResult(mod)
}

func (s *Server) handleGetDeclaration(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	module, err := req.RequireString("module")
	if err != nil {
		return mcp.NewToolResultError("module is required"), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	if _, ok := s.query.GetModule(module); !ok {
		return mcp.NewToolResultError(s.notFound(fmt.Sprintf("module %q not found", module), module)), nil
	}

	d, ok := s.query.GetDeclaration(module, name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("declaration %q not found in module %q; use search_declarations to locate it", name, module)), nil
	}
	return jsonResult(declarationResult{Module: module, Declaration: d})
}

func (s *Server) handleSearchDeclarations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	limit := req.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	hits := s.query.Search(query, limit)
	out := make([]declarationResult, len(hits))
	for i, h := range hits {
		out[i] = declarationResult{
			Module:      h.Module,
			Kind:        h.Kind,
			MatchReason: h.MatchReason,
			Declaration: h.Declaration,
		}
	}
	return jsonResult(out)
}

// notFound appends module names close to the requested one to msg.
func (s *Server) notFound(msg, name string) string {
	key := name
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}

	var names []string
	for _, m := range s.query.ListModules(key) {
		names = append(names, m.Name)
	}
	if len(names) == 0 {
		return msg + "; use list_modules to see available modules"
	}
	return msg + "; did you mean: " + strings.Join(names, ", ")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
