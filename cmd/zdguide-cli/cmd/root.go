package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"zdguide/internal/adapters/tui/views"
	"zdguide/internal/application"
	"zdguide/internal/bootstrap"
	"zdguide/internal/config"
)

var (
	configFile string
	jsonOutput bool
	rt         *bootstrap.Runtime
)

// errRunFailed signals a non-zero exit after the report was already printed
var errRunFailed = errors.New("run finished with errors")

var rootCmd = &cobra.Command{
	Use:   "zdguide-cli",
	Short: "Mirror a Zendesk help center into a local store",
	Long: `zdguide-cli pulls categories, sections and articles from a Zendesk
help center and reconciles them into a local SQLite store.

Settings are read from the config file and ZDGUIDE_* environment
variables, e.g. ZDGUIDE_ZENDESK_API_TOKEN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		rt, err = bootstrap.Open(cmd.Context(), bootstrap.Options{ConfigFile: configFile, Flags: cmd.Flags()})
		return err
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if rt != nil {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().String("store", "", "store path (overrides store.path)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "parallel parent fetches (overrides sync.fetch_concurrency)")
	rootCmd.PersistentFlags().String("site-url", "", "permalink prefix (overrides site.base_url)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides log.level)")
	rootCmd.PersistentFlags().String("log-file", "", "rotating log file (overrides log.file)")
}

// GetApp returns the initialized application context
func GetApp() *application.Context {
	return rt.App
}

// printReports writes reports and returns errRunFailed when any failed
func printReports(cmd *cobra.Command, reports ...*application.RunReport) error {
	failed := false
	for _, r := range reports {
		failed = failed || r.Failed()
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			fmt.Fprintln(out, views.RenderReport(r))
		}
	}

	if failed {
		return errRunFailed
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
