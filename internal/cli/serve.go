package cli

import (
	"github.com/spf13/cobra"

	"tradedesk/internal/api"
)

func addServeCommand(rootCmd *cobra.Command, app *App) {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal and watchlist over HTTP",
		Long: `Start the JSON API on the configured listen address.

The server runs until interrupted and shuts down gracefully.`,
		Example: `  tradedesk serve
  tradedesk serve --listen :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := listen
			if addr == "" && app.Config != nil {
				addr = app.Config.Server.Listen
			}
			if addr == "" {
				addr = "127.0.0.1:8080"
			}

			output := NewOutput(cmd)
			if !output.IsJSON() {
				output.Info("Listening on %s", addr)
			}
			return api.NewServer(app.Desk, app.Logger).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	rootCmd.AddCommand(cmd)
}
