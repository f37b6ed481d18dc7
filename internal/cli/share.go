package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tradedesk/internal/listing"
	"tradedesk/internal/share"
	"tradedesk/pkg/utils"
)

// addShareCommands adds watchlist sharing commands.
func addShareCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share the watchlist",
		Long:  "Publish a read-only snapshot of the watchlist and open shared snapshots.",
	}

	cmd.AddCommand(newShareCreateCmd(app))
	cmd.AddCommand(newShareOpenCmd(app))

	rootCmd.AddCommand(cmd)
}

func newShareCreateCmd(app *App) *cobra.Command {
	var (
		opts share.Options
		tags []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a watchlist snapshot",
		Long: `Publish a snapshot of the watchlist and print its link.

Notes and prices are left out unless asked for.`,
		Example: `  tradedesk share create
  tradedesk share create --prices --notes --tags Tech`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			link, err := app.Desk.Share(ctx, opts, listing.StockFilter{Tags: tags})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(link)
			}
			output.Success("✓ Shared %d symbols", len(link.Snapshot.Watchlist))
			output.Println(link.URL)
			if strings.HasPrefix(link.ID, "-") {
				output.Dim("Open with: tradedesk share open -- %s", link.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.IncludeNotes, "notes", false, "include notes")
	cmd.Flags().BoolVar(&opts.IncludePrices, "prices", false, "include prices")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "only share symbols with any of these tags")

	return cmd
}

func newShareOpenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [--] <id-or-link>",
		Short: "Open a shared watchlist",
		Long: `Open a shared watchlist by id or link.

Share ids can start with '-'. Pass those after '--' so they are not read as flags.`,
		Example: `  tradedesk share open 1x2y3z
  tradedesk share open -- -f9cx1j
  tradedesk share open "http://localhost:8080/?share=-f9cx1j"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			snap, err := app.Desk.OpenShare(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(snap)
			}

			output.Bold("Shared Watchlist")
			output.Dim("Shared %s", FormatTimestamp(snap.Timestamp))
			output.Println()

			headers := []string{"Symbol", "Name"}
			if snap.Settings.IncludePrices {
				headers = append(headers, "Price", "Change")
			}
			headers = append(headers, "Tags")
			if snap.Settings.IncludeNotes {
				headers = append(headers, "Notes")
			}

			table := NewTable(output, headers...)
			for _, s := range snap.Watchlist {
				row := []string{s.Symbol, TruncateString(s.Name, 24)}
				if snap.Settings.IncludePrices {
					row = append(row, FormatOptionalPrice(s.Price), sharedChange(s))
				}
				row = append(row, strings.Join(s.Tags, ", "))
				if snap.Settings.IncludeNotes {
					row = append(row, TruncateString(s.Notes, 40))
				}
				table.AddRow(row...)
			}
			table.Render()
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if strings.Contains(err.Error(), "unknown shorthand flag") {
			return fmt.Errorf("%w (share ids starting with '-' go after '--': tradedesk share open -- <id>)", err)
		}
		return err
	})
	return cmd
}

func sharedChange(s share.SharedStock) string {
	if s.Change == nil || s.ChangePercent == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", utils.FormatChange(*s.Change), utils.FormatPercent(*s.ChangePercent))
}
