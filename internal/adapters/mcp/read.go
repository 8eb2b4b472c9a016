package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"zdguide/internal/application"
	"zdguide/internal/application/commands"
	"zdguide/internal/ports"
)

// RegisterReadTools adds the read-only help-center tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, app *application.Context) {
	s.AddTool(searchTool(), searchHandler(app))
	s.AddTool(listTermsTool(), listTermsHandler(app))
	s.AddTool(ticketFormsTool(), ticketFormsHandler(app))
}

// --- search_articles ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search_articles",
		mcp.WithDescription("Search synced help-center articles. Returns id, title, URL and optionally an excerpt."),
		mcp.WithString("query",
			mcp.Description("Free-text query"),
			mcp.Required(),
		),
		mcp.WithNumber("per_page",
			mcp.Description("Maximum results (1-20, default 5)"),
		),
		mcp.WithBoolean("show_excerpt",
			mcp.Description("Include a short plain-text excerpt"),
		),
	)
}

func searchHandler(app *application.Context) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if strings.TrimSpace(query) == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		results, err := commands.NewSearchCommand(app, query, req.GetInt("per_page", 0), req.GetBool("show_excerpt", false)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return formatEntities(results, func(r commands.SearchResult) string {
			line := fmt.Sprintf("%d  %s  %s", r.ID, r.Title, r.URL)
			if r.Excerpt != "" {
				line += "\n    " + r.Excerpt
			}
			return line
		})
	}
}

// --- list_terms ---

func listTermsTool() mcp.Tool {
	return mcp.NewTool("list_terms",
		mcp.WithDescription("List synced categories or sections by name with their article counts."),
		mcp.WithString("taxonomy",
			mcp.Description("category or section (default category)"),
			mcp.Enum("category", "section"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries (1-50, default 6)"),
		),
	)
}

func listTermsHandler(app *application.Context) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := application.ParseEntityKind(req.GetString("taxonomy", "category"))
		if err != nil {
			return toolError(err)
		}

		entries, err := commands.NewListTermsCommand(app, kind, req.GetInt("limit", 0)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return formatEntities(entries, func(e commands.TermEntry) string {
			return fmt.Sprintf("%s  (%d articles)  %s", e.Name, e.ArticleCount, e.URL)
		})
	}
}

// --- list_ticket_forms ---

func ticketFormsTool() mcp.Tool {
	return mcp.NewTool("list_ticket_forms",
		mcp.WithDescription("Fetch the ticket forms configured in the help-desk account."),
	)
}

func ticketFormsHandler(app *application.Context) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		forms, err := commands.NewListTicketFormsCommand(app).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(forms, func(f ports.TicketForm) string {
			return fmt.Sprintf("%d  %s", f.ID, f.Name)
		})
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(application.ErrorMessage(err)), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}
