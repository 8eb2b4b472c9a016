package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"zdguide/internal/application"
	"zdguide/internal/application/commands"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list [categories|sections]",
	Short: "List synced categories or sections with article counts",
	Long: `List synced taxonomy terms by name with their published article counts.

Examples:
  zdguide-cli list
  zdguide-cli list sections --limit 20`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"categories", "sections"},
	RunE: func(cmd *cobra.Command, args []string) error {
		taxonomy := "categories"
		if len(args) == 1 {
			taxonomy = args[0]
		}
		kind, err := application.ParseEntityKind(taxonomy)
		if err != nil {
			return err
		}

		entries, err := commands.NewListTermsCommand(GetApp(), kind, listLimit).Execute(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, entries)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "No %s synced yet\n", taxonomy)
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%-40s %4d  %s\n", e.Name, e.ArticleCount, e.URL)
		}
		return nil
	},
}

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the account's ticket forms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		forms, err := commands.NewListTicketFormsCommand(GetApp()).Execute(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s", application.ErrorMessage(err))
		}
		if jsonOutput {
			return printJSON(cmd, forms)
		}
		for _, f := range forms {
			fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", f.ID, f.Name)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 6, "maximum entries (1-50)")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(formsCmd)
}
