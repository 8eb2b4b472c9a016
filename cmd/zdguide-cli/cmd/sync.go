package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zdguide/internal/adapters/tui/views"
	"zdguide/internal/application"
	"zdguide/internal/application/commands"
	"zdguide/internal/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync <categories|sections|articles|all>",
	Short: "Mirror one level of the help center, or all of them in order",
	Long: `Mirror remote content into the local store.

Each level reads the one synced before it, so run categories, then
sections, then articles. "all" runs the three in order and stops at
the first level that fails.

Examples:
  zdguide-cli sync categories
  zdguide-cli sync all --json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"categories", "sections", "articles", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		levels := map[string]application.Intent{
			"categories": application.IntentSyncCategories,
			"sections":   application.IntentSyncSections,
			"articles":   application.IntentSyncArticles,
		}
		if intent, ok := levels[args[0]]; ok {
			return printReports(cmd, commands.Run(ctx, GetApp(), intent))
		}
		if args[0] != "all" {
			return fmt.Errorf("unknown level %q: expected categories, sections, articles or all", args[0])
		}

		var reports []*application.RunReport
		var total domain.SyncStats
		for _, intent := range []application.Intent{
			application.IntentSyncCategories,
			application.IntentSyncSections,
			application.IntentSyncArticles,
		} {
			report := commands.Run(ctx, GetApp(), intent)
			reports = append(reports, report)
			total.Add(report.Stats)
			total.Duration += report.Stats.Duration
			if report.Failed() {
				break
			}
		}

		err := printReports(cmd, reports...)
		if !jsonOutput {
			if summary := views.RenderStats(total); summary != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "total: "+summary)
			}
		}
		return err
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the configured credentials reach the help-center API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReports(cmd, commands.Run(cmd.Context(), GetApp(), application.IntentTestConnection))
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(testCmd)
}
