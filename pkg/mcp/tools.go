package mcp

import "github.com/mark3labs/mcp-go/mcp"

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

func listModulesTool() mcp.Tool {
	return mcp.NewTool("list_modules",
		mcp.WithDescription("List documented modules with export and type counts. Optionally filter by a keyword matched against module names and comments."),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive filter (e.g. 'store')")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getModuleTool() mcp.Tool {
	return mcp.NewTool("get_module",
		mcp.WithDescription("Get the full documentation record of one module: its comment, exports and types with snippets and member docs."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Module name as listed by list_modules (e.g. 'svelte/store')")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getDeclarationTool() mcp.Tool {
	return mcp.NewTool("get_declaration",
		mcp.WithDescription("Get one declaration of a module: comment, snippet and members."),
		mcp.WithString("module",
			mcp.Required(),
			mcp.Description("Module name (e.g. 'svelte/store')")),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Declaration name (e.g. 'writable')")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func searchDeclarationsTool() mcp.Tool {
	return mcp.NewTool("search_declarations",
		mcp.WithDescription("Search declarations across all modules by name, comment or member name. Name matches are listed first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Case-insensitive search text")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (1-100, default: 20)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
