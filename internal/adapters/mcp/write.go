package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"zdguide/internal/application"
	"zdguide/internal/application/commands"
)

// RegisterWriteTools adds one tool per operator intent. The stdio transport
// runs as the local operator, so no anti-replay token is required.
func RegisterWriteTools(s *server.MCPServer, app *application.Context) {
	descriptions := map[application.Intent]string{
		application.IntentTestConnection: "Check that the configured credentials can read the help-center API.",
		application.IntentSyncCategories: "Mirror remote categories into the local store (upsert by external id).",
		application.IntentSyncSections:   "Mirror the sections of every synced category. Run sync_categories first.",
		application.IntentSyncArticles:   "Mirror the articles of every synced section. Run sync_sections first.",
	}

	for _, intent := range application.Intents {
		s.AddTool(
			mcp.NewTool(string(intent), mcp.WithDescription(descriptions[intent])),
			intentHandler(app, intent),
		)
	}
}

func intentHandler(app *application.Context, intent application.Intent) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report := commands.Run(ctx, app, intent)
		text := FormatReport(report)
		if report.Failed() {
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// FormatReport renders a run report as plain text, one outcome per line
func FormatReport(report *application.RunReport) string {
	var sb strings.Builder
	for _, o := range report.Outcomes {
		fmt.Fprintf(&sb, "[%s] %s\n", o.Level, o.Message)
	}
	s := report.Stats
	if s.Fetched > 0 || s.SkippedParents > 0 {
		fmt.Fprintf(&sb, "fetched %d, created %d, updated %d, failed %d, skipped parents %d (%s)\n",
			s.Fetched, s.Created, s.Updated, s.Failed, s.SkippedParents, s.Duration.Round(time.Millisecond))
	}
	return sb.String()
}
