package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradedesk/internal/desk"
	"tradedesk/internal/listing"
	"tradedesk/internal/models"
	"tradedesk/pkg/utils"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal management",
		Long:  "Record, review, edit and remove journal trades.",
	}

	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalShowCmd(app))
	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalUpdateCmd(app))
	cmd.AddCommand(newJournalRemoveCmd(app))
	cmd.AddCommand(newJournalSummaryCmd(app))

	rootCmd.AddCommand(cmd)
}

// sortFlags reads the --sort and --dir flags.
func sortFlags(cmd *cobra.Command) (listing.SortState, error) {
	field, _ := cmd.Flags().GetString("sort")
	dirFlag, _ := cmd.Flags().GetString("dir")
	dir, err := listing.ParseDirection(dirFlag)
	if err != nil {
		return listing.SortState{}, err
	}
	return listing.SortState{Field: strings.TrimSpace(field), Direction: dir}, nil
}

func newJournalListCmd(app *App) *cobra.Command {
	var (
		strategy  string
		assetType string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal trades",
		Long: fmt.Sprintf(`List journal trades, newest first by default.

Sort fields: %s`, strings.Join(listing.TradeSortFields(), ", ")),
		Example: `  tradedesk journal list
  tradedesk journal list --strategy Breakout --sort pnl --dir desc
  tradedesk journal list --asset-type call --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			sort, err := sortFlags(cmd)
			if err != nil {
				return err
			}
			trades, err := app.Desk.Trades(ctx, desk.TradeQuery{
				Filter: listing.TradeFilter{
					Strategy:  strategy,
					AssetType: models.AssetType(strings.ToLower(assetType)),
				},
				Sort: sort,
			})
			if err != nil {
				return err
			}
			if limit > 0 && len(trades) > limit {
				trades = trades[:limit]
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades recorded.")
				output.Dim("Tip: add one with 'tradedesk journal add' or load demo data with 'tradedesk seed'.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Time", "Symbol", "Side", "Type", "Qty", "Price", "P&L", "Strategy")
			for i := range trades {
				t := &trades[i]
				table.AddRow(
					t.ID,
					t.Date,
					t.Time,
					t.Symbol,
					string(t.Side),
					assetLabel(t),
					fmt.Sprintf("%d", t.Quantity),
					utils.FormatPrice(t.Price),
					FormatOptionalPnL(output, t.PnL),
					TruncateString(t.Strategy, 15),
				)
			}
			table.Render()
			output.Println()
			output.Dim("%d trades", len(trades))
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "only trades with this strategy")
	cmd.Flags().StringVar(&assetType, "asset-type", "", "only trades of this asset type (stock, call, put)")
	cmd.Flags().String("sort", "", "sort field")
	cmd.Flags().String("dir", "", "sort direction (asc, desc)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many trades")

	return cmd
}

// assetLabel describes the instrument, including strike and expiry for options.
func assetLabel(t *models.Trade) string {
	if !t.AssetType.IsOption() {
		return string(t.AssetType)
	}
	label := string(t.AssetType)
	if t.StrikePrice != nil {
		label += fmt.Sprintf(" %g", *t.StrikePrice)
	}
	if t.ExpirationDate != "" {
		label += " " + t.ExpirationDate
	}
	return label
}

func newJournalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			t, err := app.Desk.Store().GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(t)
			}
			showTrade(output, t)
			return nil
		},
	}
}

func showTrade(output *Output, t *models.Trade) {
	lines := []string{
		fmt.Sprintf("Date:       %s %s", t.Date, t.Time),
		fmt.Sprintf("Side:       %s %d @ %s", t.Side, t.Quantity, utils.FormatPrice(t.Price)),
		fmt.Sprintf("Asset:      %s", assetLabel(t)),
		fmt.Sprintf("P&L:        %s", FormatOptionalPnL(output, t.PnL)),
		fmt.Sprintf("Holding:    %s", FormatHolding(t.HoldingPeriod)),
	}
	if t.AssetType.IsOption() {
		lines = append(lines,
			fmt.Sprintf("DTE:        %s", FormatDTE(t.DaysToExpiration)),
			fmt.Sprintf("IV:         %s -> %s", FormatIV(t.EntryIV), FormatIV(t.ExitIV)),
		)
	}
	if t.Strategy != "" {
		lines = append(lines, fmt.Sprintf("Strategy:   %s", t.Strategy))
	}
	if len(t.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("Tags:       %s", strings.Join(t.Tags, ", ")))
	}
	if t.Notes != "" {
		lines = append(lines, fmt.Sprintf("Notes:      %s", t.Notes))
	}
	output.Box(fmt.Sprintf("%s  #%s", t.Symbol, t.ID), lines)
}

func newJournalAddCmd(app *App) *cobra.Command {
	var (
		t          models.Trade
		side       string
		assetType  string
		pnl        float64
		strike     float64
		dte        int
		entryIV    float64
		holding    float64
		exitPrice  float64
		commission float64
	)

	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Record a trade",
		Long: `Record a stock or option trade in the journal.

Date and time default to now. Trades dated on a weekend are rejected.`,
		Example: `  tradedesk journal add AAPL --qty 100 --price 175.5 --pnl 245.5 --strategy Breakout
  tradedesk journal add TSLA --asset-type call --qty 5 --price 3.25 --strike 250 \
      --expiration 2024-01-19 --dte 4 --entry-iv 0.65 --pnl -625`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			now := time.Now()
			t.Symbol = args[0]
			t.Side = models.Side(strings.ToLower(side))
			t.AssetType = models.AssetType(strings.ToLower(assetType))
			if t.Date == "" {
				t.Date = now.Format(models.DateLayout)
			}
			if t.Time == "" {
				t.Time = now.Format(models.TimeLayout)
			}

			flags := cmd.Flags()
			if flags.Changed("pnl") {
				t.PnL = models.Float(pnl)
			}
			if flags.Changed("strike") {
				t.StrikePrice = models.Float(strike)
			}
			if flags.Changed("dte") {
				t.DaysToExpiration = models.Int(dte)
			}
			if flags.Changed("entry-iv") {
				t.EntryIV = models.Float(entryIV)
			}
			if flags.Changed("holding") {
				t.HoldingPeriod = models.Float(holding)
			}
			if flags.Changed("exit-price") {
				t.ExitPrice = models.Float(exitPrice)
			}
			if flags.Changed("commission") {
				t.Commission = models.Float(commission)
			}

			if err := app.Desk.AddTrade(ctx, &t); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(t)
			}
			output.Success("✓ Recorded %s %s #%s", t.Side, t.Symbol, t.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&side, "side", string(models.SideBuy), "buy or sell")
	flags.StringVar(&assetType, "asset-type", string(models.AssetStock), "stock, call or put")
	flags.IntVar(&t.Quantity, "qty", 0, "quantity (shares or contracts)")
	flags.Float64Var(&t.Price, "price", 0, "fill price")
	flags.StringVar(&t.Date, "date", "", "trade date, YYYY-MM-DD (default today)")
	flags.StringVar(&t.Time, "time", "", "trade time, HH:MM (default now)")
	flags.StringVar(&t.Strategy, "strategy", "", "strategy name")
	flags.StringVar(&t.Notes, "notes", "", "free-form notes")
	flags.StringSliceVar(&t.Tags, "tags", nil, "comma-separated tags")
	flags.Float64Var(&pnl, "pnl", 0, "realized P&L")
	flags.Float64Var(&exitPrice, "exit-price", 0, "exit price")
	flags.Float64Var(&commission, "commission", 0, "commission paid")
	flags.Float64Var(&strike, "strike", 0, "option strike price")
	flags.StringVar(&t.ExpirationDate, "expiration", "", "option expiration, YYYY-MM-DD")
	flags.IntVar(&dte, "dte", 0, "days to expiration at entry")
	flags.Float64Var(&entryIV, "entry-iv", 0, "implied volatility at entry, as a fraction")
	flags.Float64Var(&holding, "holding", 0, "holding period in minutes")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newJournalUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <trade-id>",
		Short: "Edit a trade",
		Long:  "Edit a recorded trade. Only the flags given are changed.",
		Example: `  tradedesk journal update 1001 --pnl 310 --notes "Trailed the stop"
  tradedesk journal update 1001 --exit-iv 0.42 --holding 95`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			u, err := tradeUpdateFromFlags(cmd)
			if err != nil {
				return err
			}
			t, err := app.Desk.UpdateTrade(ctx, args[0], u)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(t)
			}
			output.Success("✓ Updated trade #%s", t.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("symbol", "", "symbol")
	flags.String("side", "", "buy or sell")
	flags.String("asset-type", "", "stock, call or put")
	flags.Int("qty", 0, "quantity")
	flags.Float64("price", 0, "fill price")
	flags.String("date", "", "trade date, YYYY-MM-DD")
	flags.String("time", "", "trade time, HH:MM")
	flags.String("strategy", "", "strategy name")
	flags.String("notes", "", "notes")
	flags.StringSlice("tags", nil, "comma-separated tags")
	flags.Float64("pnl", 0, "realized P&L")
	flags.Float64("holding", 0, "holding period in minutes")
	flags.Float64("exit-price", 0, "exit price")
	flags.Float64("exit-iv", 0, "implied volatility at exit, as a fraction")

	return cmd
}

// tradeUpdateFromFlags builds a partial update from the flags that were set.
func tradeUpdateFromFlags(cmd *cobra.Command) (models.TradeUpdate, error) {
	var u models.TradeUpdate
	flags := cmd.Flags()
	changed := 0

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		changed++
		v, _ := flags.GetString(name)
		return &v
	}
	num := func(name string) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		changed++
		v, _ := flags.GetFloat64(name)
		return &v
	}

	u.Symbol = str("symbol")
	if s := str("side"); s != nil {
		side := models.Side(strings.ToLower(*s))
		u.Side = &side
	}
	if s := str("asset-type"); s != nil {
		a := models.AssetType(strings.ToLower(*s))
		u.AssetType = &a
	}
	if flags.Changed("qty") {
		changed++
		q, _ := flags.GetInt("qty")
		u.Quantity = &q
	}
	u.Price = num("price")
	u.Date = str("date")
	u.Time = str("time")
	u.Strategy = str("strategy")
	u.Notes = str("notes")
	if flags.Changed("tags") {
		changed++
		tags, _ := flags.GetStringSlice("tags")
		u.Tags = append([]string{}, tags...)
	}
	u.PnL = num("pnl")
	u.HoldingPeriod = num("holding")
	u.ExitPrice = num("exit-price")
	u.ExitIV = num("exit-iv")

	if changed == 0 {
		return u, fmt.Errorf("nothing to update: pass at least one field flag")
	}
	return u, nil
}

func newJournalRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <trade-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a trade",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := app.Desk.RemoveTrade(ctx, args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"removed": args[0]})
			}
			output.Success("✓ Removed trade #%s", args[0])
			return nil
		},
	}
}

func newJournalSummaryCmd(app *App) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show win rate and P&L totals",
		Long:  "Show journal summary statistics. See 'analytics report' for breakdowns.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			a, err := app.Desk.Analytics(ctx, listing.TradeFilter{Strategy: strategy})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(a.Summary)
			}
			showSummary(output, a.Summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "only trades with this strategy")
	return cmd
}
