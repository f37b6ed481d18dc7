package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradedesk/internal/listing"
	"tradedesk/internal/models"
	"tradedesk/internal/performance"
	"tradedesk/pkg/utils"
)

// addAnalyticsCommands adds performance analytics commands.
func addAnalyticsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"stats"},
		Short:   "Performance analytics",
		Long:    "Summary statistics, breakdowns, the session heatmap and the P&L calendar.",
	}

	cmd.AddCommand(newAnalyticsReportCmd(app))
	cmd.AddCommand(newAnalyticsHeatmapCmd(app))
	cmd.AddCommand(newAnalyticsCalendarCmd(app))

	rootCmd.AddCommand(cmd)
}

// breakdownNames maps the --by values to metric breakdowns.
var breakdownNames = []string{"hour", "asset", "weekday", "holding", "iv", "dte", "price", "strategy"}

func selectBreakdown(m *performance.Metrics, name string) (string, performance.Breakdown, error) {
	switch name {
	case "hour":
		return "By Hour", m.ByHour, nil
	case "asset":
		return "By Asset Type", m.ByAssetType, nil
	case "weekday":
		return "By Weekday", m.ByWeekday, nil
	case "holding":
		return "By Holding Period", m.ByHoldingPeriod, nil
	case "iv":
		return "By Implied Volatility", m.ByIV, nil
	case "dte":
		return "By Days to Expiration", m.ByDTE, nil
	case "price":
		return "By Price", m.ByPrice, nil
	case "strategy":
		return "By Strategy", m.ByStrategy, nil
	}
	return "", nil, fmt.Errorf("unknown breakdown %q (valid: %s)", name, strings.Join(breakdownNames, ", "))
}

func newAnalyticsReportCmd(app *App) *cobra.Command {
	var (
		strategy  string
		assetType string
		by        []string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show summary statistics and breakdowns",
		Long: fmt.Sprintf(`Show journal summary statistics and P&L breakdowns.

Breakdowns: %s`, strings.Join(breakdownNames, ", ")),
		Example: `  tradedesk analytics report
  tradedesk analytics report --by hour,weekday
  tradedesk analytics report --asset-type call --by iv,dte`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			a, err := app.Desk.Analytics(ctx, listing.TradeFilter{
				Strategy:  strategy,
				AssetType: models.AssetType(strings.ToLower(assetType)),
			})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(a)
			}

			showSummary(output, a.Summary)
			for _, name := range by {
				title, b, err := selectBreakdown(a.Metrics, strings.TrimSpace(name))
				if err != nil {
					return err
				}
				output.Println()
				showBreakdown(output, title, b)
			}
			if a.Metrics.Skipped > 0 {
				output.Println()
				output.Warning("%d trades skipped (weekend or unparseable date/time)", a.Metrics.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "only trades with this strategy")
	cmd.Flags().StringVar(&assetType, "asset-type", "", "only trades of this asset type")
	cmd.Flags().StringSliceVar(&by, "by", []string{"asset", "strategy"}, "breakdowns to show")

	return cmd
}

func showSummary(output *Output, s performance.Summary) {
	lines := []string{
		fmt.Sprintf("Trades:         %d (%d stock, %d call, %d put)", s.TotalTrades, s.StockTrades, s.CallTrades, s.PutTrades),
		fmt.Sprintf("Wins/Losses:    %d/%d (%s win rate)", s.WinningTrades, s.LosingTrades, utils.FormatWinRate(s.WinRate)),
		fmt.Sprintf("Total P&L:      %s", output.FormatPnL(s.TotalPnL.InexactFloat64())),
		fmt.Sprintf("Avg Win:        %s", output.FormatPnL(s.AvgWin.InexactFloat64())),
		fmt.Sprintf("Avg Loss:       %s", output.FormatPnL(s.AvgLoss.InexactFloat64())),
		fmt.Sprintf("Largest Win:    %s", output.FormatPnL(s.LargestWin.InexactFloat64())),
		fmt.Sprintf("Largest Loss:   %s", output.FormatPnL(s.LargestLoss.InexactFloat64())),
		fmt.Sprintf("Profit Factor:  %.2f", s.ProfitFactor),
	}
	output.Box("Performance Summary", lines)
}

func showBreakdown(output *Output, title string, b performance.Breakdown) {
	output.Bold(title)
	table := NewTable(output, "Bucket", "Trades", "Win Rate", "P&L", "Avg P&L")
	for _, bucket := range b {
		if bucket.Count == 0 {
			table.AddRow(bucket.Label, "0", "-", output.DimText("-"), output.DimText("-"))
			continue
		}
		table.AddRow(
			bucket.Label,
			fmt.Sprintf("%d", bucket.Count),
			utils.FormatWinRate(bucket.WinRate()),
			output.FormatPnL(bucket.PnL.InexactFloat64()),
			output.FormatPnL(bucket.AvgPnL().InexactFloat64()),
		)
	}
	table.Render()
}

// monthFlag parses --month, returning the zero time when it is unset.
func monthFlag(cmd *cobra.Command) (time.Time, error) {
	m, _ := cmd.Flags().GetString("month")
	if m == "" {
		return time.Time{}, nil
	}
	return performance.ParseMonth(m)
}

func newAnalyticsHeatmapCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show P&L by trading session and weekday",
		Long: `Show the session heatmap: total P&L for each trading session
(Pre, 9-11, 12-2, 3-4, AH) and weekday of one month. Cell shading
deepens with the size of the P&L relative to the largest cell.`,
		Example: `  tradedesk analytics heatmap
  tradedesk analytics heatmap --month 2025-06`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			hm, err := app.Desk.Heatmap(ctx, month)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(hm)
			}
			renderHeatmap(output, hm)
			return nil
		},
	}
	cmd.Flags().String("month", "", "month, YYYY-MM (default from config)")
	return cmd
}

const heatCellWidth = 11

func renderHeatmap(output *Output, hm *performance.Heatmap) {
	output.Bold("Session Heatmap - %s", hm.Month)
	output.Println()

	header := PadLeft("", 6)
	for _, wd := range hm.Weekdays {
		header += Center(wd[:3], heatCellWidth)
	}
	output.Println(strings.TrimRight(header, " "))

	for _, row := range hm.Rows {
		line := PadLeft(string(row.Session), 5) + " "
		for _, c := range row.Cells {
			pnl := c.PnL.InexactFloat64()
			text := "-"
			if c.Count > 0 {
				text = FormatPnL(pnl)
			}
			line += output.HeatCell(Center(text, heatCellWidth), pnl, c.Intensity)
		}
		output.Println(strings.TrimRight(line, " "))
	}
}

func newAnalyticsCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show daily P&L for a month",
		Long: `Show a month calendar with each day's total P&L and trade count,
followed by the monthly totals and the best and worst days.`,
		Example: `  tradedesk analytics calendar
  tradedesk analytics calendar --month 2025-06 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			cal, err := app.Desk.Calendar(ctx, month)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(cal)
			}
			renderCalendar(output, cal)
			return nil
		},
	}
	cmd.Flags().String("month", "", "month, YYYY-MM (default from config)")
	return cmd
}

const calCellWidth = 10

func renderCalendar(output *Output, cal *performance.Calendar) {
	output.Bold("P&L Calendar - %s", cal.Month)
	output.Println()

	var header string
	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		header += Center(wd, calCellWidth)
	}
	output.Println(strings.TrimRight(header, " "))

	// Each week prints two lines: day numbers, then P&L.
	days := strings.Repeat(" ", calCellWidth*cal.LeadingBlanks)
	pnls := days
	col := cal.LeadingBlanks
	flush := func() {
		output.Println(strings.TrimRight(days, " "))
		output.Println(strings.TrimRight(pnls, " "))
		days, pnls, col = "", "", 0
	}

	for _, d := range cal.Days {
		days += Center(fmt.Sprintf("%d", d.Day), calCellWidth)
		switch {
		case d.Weekend:
			pnls += output.DimText(Center("", calCellWidth))
		case d.Count == 0:
			pnls += output.DimText(Center("-", calCellWidth))
		default:
			pnl := d.PnL.InexactFloat64()
			pnls += output.HeatCell(Center(compactPnL(pnl), calCellWidth), pnl, d.Intensity)
		}
		col++
		if col == 7 {
			flush()
		}
	}
	if col > 0 {
		flush()
	}

	output.Println()
	output.Printf("  Total P&L:     %s\n", output.FormatPnL(cal.TotalPnL.InexactFloat64()))
	output.Printf("  Trades:        %d over %d trading days\n", cal.TotalTrades, cal.TradingDays)
	output.Printf("  Avg Daily P&L: %s\n", output.FormatPnL(cal.AvgDailyPnL.InexactFloat64()))
	if cal.BestDay != nil {
		output.Printf("  Best Day:      %s %s\n", cal.BestDay.Date, output.FormatPnL(cal.BestDay.PnL.InexactFloat64()))
	}
	if cal.WorstDay != nil {
		output.Printf("  Worst Day:     %s %s\n", cal.WorstDay.Date, output.FormatPnL(cal.WorstDay.PnL.InexactFloat64()))
	}
}

// compactPnL fits a P&L into a calendar cell, abbreviating thousands.
func compactPnL(pnl float64) string {
	sign := ""
	if pnl > 0 {
		sign = "+"
	} else if pnl < 0 {
		sign = "-"
		pnl = -pnl
	}
	if pnl >= 1000 {
		return fmt.Sprintf("%s$%.1fK", sign, pnl/1000)
	}
	return fmt.Sprintf("%s$%.0f", sign, pnl)
}
