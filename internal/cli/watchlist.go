package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tradedesk/internal/desk"
	"tradedesk/internal/listing"
	"tradedesk/internal/models"
	"tradedesk/internal/store"
	"tradedesk/pkg/utils"
)

// addWatchlistCommands adds watchlist and quote commands.
func addWatchlistCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "watchlist",
		Aliases: []string{"wl"},
		Short:   "Watchlist management",
		Long:    "Track symbols with notes, tags and refreshed quotes.",
	}

	cmd.AddCommand(newWatchlistListCmd(app))
	cmd.AddCommand(newWatchlistAddCmd(app))
	cmd.AddCommand(newWatchlistNotesCmd(app))
	cmd.AddCommand(newWatchlistTagsCmd(app))
	cmd.AddCommand(newWatchlistRemoveCmd(app))
	cmd.AddCommand(newWatchlistRefreshCmd(app))
	cmd.AddCommand(newWatchlistStatusCmd(app))

	rootCmd.AddCommand(cmd)
	rootCmd.AddCommand(newQuoteCmd(app))
}

func newWatchlistListCmd(app *App) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List watchlist symbols",
		Long: fmt.Sprintf(`List watchlist symbols. With --tags only symbols carrying at least
one of the tags are shown.

Sort fields: %s`, strings.Join(listing.StockSortFields(), ", ")),
		Example: `  tradedesk watchlist list
  tradedesk watchlist list --tags Tech,EV --sort changePercent --dir desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			sort, err := sortFlags(cmd)
			if err != nil {
				return err
			}
			stocks, err := app.Desk.Stocks(ctx, desk.StockQuery{
				Filter: listing.StockFilter{Tags: tags},
				Sort:   sort,
			})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(stocks)
			}
			if len(stocks) == 0 {
				output.Info("Watchlist is empty.")
				output.Dim("Tip: add a symbol with 'tradedesk watchlist add <symbol>'.")
				return nil
			}

			renderStocks(output, stocks)
			if app.Desk.QuotesStale() {
				output.Println()
				output.Warning("Quotes are stale. Run 'tradedesk watchlist refresh'.")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tags", nil, "only symbols with any of these tags")
	cmd.Flags().String("sort", "", "sort field")
	cmd.Flags().String("dir", "", "sort direction (asc, desc)")

	return cmd
}

func renderStocks(output *Output, stocks []models.Stock) {
	table := NewTable(output, "ID", "Symbol", "Name", "Price", "Change", "Volume", "High", "Low", "Pre", "Tags")
	for i := range stocks {
		s := &stocks[i]
		pre := "-"
		if s.PreMarketPrice != nil {
			pre = utils.FormatPrice(*s.PreMarketPrice)
		}
		table.AddRow(
			TruncateString(s.ID, 8),
			s.Symbol,
			TruncateString(s.Name, 24),
			utils.FormatPrice(s.Price),
			output.ColoredString(output.PnLColor(s.Change),
				fmt.Sprintf("%s (%s)", utils.FormatChange(s.Change), utils.FormatPercent(s.ChangePercent))),
			utils.FormatVolume(s.Volume),
			utils.FormatPrice(s.High),
			utils.FormatPrice(s.Low),
			pre,
			strings.Join(s.Tags, ", "),
		)
	}
	table.Render()
}

func newWatchlistAddCmd(app *App) *cobra.Command {
	var (
		notes string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to the watchlist",
		Long:  "Look up the symbol's current quote and add it to the watchlist.",
		Example: `  tradedesk watchlist add AAPL
  tradedesk watchlist add NVDA --tags Tech,Momentum --notes "AI play"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			stock, err := app.Desk.AddSymbol(ctx, args[0], notes, tags)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(stock)
			}
			output.Success("✓ Added %s (%s) at %s", stock.Symbol, stock.Name, utils.FormatPrice(stock.Price))
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "notes")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")

	return cmd
}

func newWatchlistNotesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <stock-id> <notes>",
		Short: "Replace a symbol's notes",
		Long:  "Replace a watchlist entry's notes. Pass an empty string to clear them.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			stock, err := app.Desk.UpdateNotes(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(stock)
			}
			output.Success("✓ Updated notes for %s", stock.Symbol)
			return nil
		},
	}
}

func newWatchlistTagsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <stock-id> [tag...]",
		Short: "Replace a symbol's tags",
		Long:  "Replace a watchlist entry's tags. With no tags the entry's tags are cleared.",
		Example: `  tradedesk watchlist tags 3f2a Tech Growth
  tradedesk watchlist tags 3f2a`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			tags := append([]string{}, args[1:]...)
			stock, err := app.Desk.UpdateTags(ctx, args[0], tags)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(stock)
			}
			if len(stock.Tags) == 0 {
				output.Success("✓ Cleared tags for %s", stock.Symbol)
			} else {
				output.Success("✓ Tagged %s: %s", stock.Symbol, strings.Join(stock.Tags, ", "))
			}
			return nil
		},
	}
}

func newWatchlistRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <stock-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a symbol from the watchlist",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := app.Desk.RemoveStock(ctx, args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": args[0]})
			}
			output.Success("✓ Removed %s from the watchlist", args[0])
			return nil
		},
	}
}

func newWatchlistRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh watchlist quotes",
		Long:  "Look up a fresh quote for every watchlist symbol. Symbols whose lookup fails keep their last quote.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			res, err := app.Desk.Refresh(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Success("✓ Refreshed %d symbols", len(res.Updated))
			if len(res.Failed) > 0 {
				output.Warning("Lookup failed for: %s", strings.Join(res.Failed, ", "))
			}
			return nil
		},
	}
}

func newWatchlistStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show data freshness",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			status := app.Desk.SyncStatus()
			if output.IsJSON() {
				return output.JSON(status)
			}
			output.Bold("Data Status")
			for _, s := range status {
				line := "  " + store.FormatSyncStatus(s)
				if s.IsStale {
					output.Println(output.Yellow(line))
				} else {
					output.Println(line)
				}
			}
			return nil
		},
	}
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "quote <symbol>",
		Short:   "Look up a quote",
		Long:    "Look up a symbol's current quote without adding it to the watchlist.",
		Example: `  tradedesk quote TSLA`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			s, err := app.Desk.Quote(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(s)
			}

			lines := []string{
				fmt.Sprintf("Price:   %s", utils.FormatPrice(s.Price)),
				fmt.Sprintf("Change:  %s", output.ColoredString(output.PnLColor(s.Change),
					fmt.Sprintf("%s (%s)", utils.FormatChange(s.Change), utils.FormatPercent(s.ChangePercent)))),
				fmt.Sprintf("Range:   %s - %s", utils.FormatPrice(s.Low), utils.FormatPrice(s.High)),
				fmt.Sprintf("Volume:  %s", utils.FormatVolume(s.Volume)),
			}
			if s.PreMarketPrice != nil {
				lines = append(lines, fmt.Sprintf("Pre:     %s", utils.FormatPrice(*s.PreMarketPrice)))
			}
			output.Box(fmt.Sprintf("%s  %s", s.Symbol, s.Name), lines)
			return nil
		},
	}
}
