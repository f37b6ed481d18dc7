package cli

import (
	"github.com/spf13/cobra"

	"tradedesk/internal/mockdata"
	"tradedesk/internal/models"
)

// addDataCommands adds demo data and reference data commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSeedCmd(app))
	rootCmd.AddCommand(newLabelsCmd("strategies", "List the built-in strategies", models.DefaultStrategies))
	rootCmd.AddCommand(newLabelsCmd("tags", "List the built-in watchlist tags", models.DefaultTags))
}

func newSeedCmd(app *App) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data",
		Long: `Load a demo journal and watchlist.

The journal holds two sample trades plus a generated month of stock and
option trades across every trading session in June 2025. The same seed
always produces the same trades. Records already present are skipped.`,
		Example: `  tradedesk seed
  tradedesk seed --memory analytics heatmap`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			res, err := app.Desk.Seed(ctx, seed)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Success("✓ Loaded %d trades and %d watchlist symbols", res.Trades, res.Stocks)
			if res.Skipped > 0 {
				output.Dim("%d records already present were skipped", res.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", mockdata.DefaultSeed, "random seed for generated trades")
	return cmd
}

func newLabelsCmd(use, short string, labels func() []models.Label) *cobra.Command {
	return &cobra.Command{
		Use:         use,
		Short:       short,
		Annotations: map[string]string{skipInit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			list := labels()
			if output.IsJSON() {
				return output.JSON(list)
			}
			table := NewTable(output, "ID", "Name", "Color")
			for _, l := range list {
				table.AddRow(l.ID, l.Name, l.Color)
			}
			table.Render()
			return nil
		},
	}
}
