package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zdguide/internal/application/commands"
)

var (
	searchPerPage int
	searchExcerpt bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search synced articles",
	Long: `Search published articles in the local store.

Title matches rank above body matches.

Examples:
  zdguide-cli search invoice
  zdguide-cli search "reset password" -n 10 --excerpt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := commands.NewSearchCommand(GetApp(), args[0], searchPerPage, searchExcerpt).Execute(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, results)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results found")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(out, "%d  %s\n    %s\n", r.ID, r.Title, r.URL)
			if r.Excerpt != "" {
				fmt.Fprintf(out, "    %s\n", r.Excerpt)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchPerPage, "per-page", "n", 5, "maximum results (1-20)")
	searchCmd.Flags().BoolVar(&searchExcerpt, "excerpt", false, "show a plain-text excerpt")
	rootCmd.AddCommand(searchCmd)
}
