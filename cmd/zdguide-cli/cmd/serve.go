package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zdguide/internal/adapters/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API and the admin trigger endpoints",
	Long: `Serve the public search and taxonomy endpoints together with the
token-protected admin endpoints that trigger sync runs.

Admin requests carry "Authorization: Bearer <admin.token>". An empty
admin.token disables every admin endpoint.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := rt.Config.HTTP.Addr
		if rt.Config.Admin.Token == "" {
			rt.Logger.Warn("admin.token is empty; admin endpoints will refuse every request")
		}

		srv := httpapi.NewServer(GetApp(), rt.Nonces(), rt.Config.Admin.Token)
		rt.Logger.Info("listening", zap.String("addr", addr))
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides http.addr)")
	rootCmd.AddCommand(serveCmd)
}
