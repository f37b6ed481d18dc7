package performance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
	"tradedesk/pkg/utils"
)

func june(t *testing.T) time.Time {
	t.Helper()
	m, err := ParseMonth(DefaultMonth)
	if err != nil {
		t.Fatalf("ParseMonth: %v", err)
	}
	return m
}

func TestHeatmap_AggregatesSessionsAcrossMonth(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-02", "09:30", 100, models.Float(100)), // Mon morning
		stockTrade("2", "2025-06-09", "10:59", 100, models.Float(50)),  // Mon morning, next week
		stockTrade("3", "2025-06-02", "04:10", 100, models.Float(-30)), // Mon pre-market
		stockTrade("4", "2025-06-05", "16:45", 100, models.Float(400)), // Thu afternoon
		stockTrade("5", "2025-06-03", "20:00", 100, models.Float(999)), // outside sessions
		stockTrade("6", "2025-06-03", "03:00", 100, models.Float(999)), // outside sessions
		stockTrade("7", "2025-05-30", "09:30", 100, models.Float(999)), // other month
		stockTrade("8", "2025-06-07", "09:30", 100, models.Float(999)), // Saturday
	}

	h := newTestAggregator().Heatmap(trades, june(t))

	if h.Month != "2025-06" {
		t.Errorf("month = %q", h.Month)
	}
	if len(h.Rows) != 5 || len(h.Weekdays) != 5 {
		t.Fatalf("grid is %dx%d, want 5x5", len(h.Rows), len(h.Weekdays))
	}

	cell, _ := h.Cell(utils.SessionMorning, time.Monday)
	if cell.Count != 2 || !cell.PnL.Equal(dec(150)) {
		t.Errorf("Mon 9-11 = %+v, want 2 trades / 150", cell)
	}
	cell, _ = h.Cell(utils.SessionPreMarket, time.Monday)
	if cell.Count != 1 || !cell.PnL.Equal(dec(-30)) {
		t.Errorf("Mon Pre = %+v, want 1 trade / -30", cell)
	}
	cell, _ = h.Cell(utils.SessionAfternoon, time.Thursday)
	if cell.Color != "rgba(57, 255, 20, 0.800)" || cell.Intensity != 1 {
		t.Errorf("largest cell should be full intensity, got %+v", cell)
	}

	total := 0
	for _, row := range h.Rows {
		for _, c := range row.Cells {
			total += c.Count
		}
	}
	if total != 4 {
		t.Errorf("heatmap holds %d trades, want 4", total)
	}
	if h.MaxAbsPnL != 400 {
		t.Errorf("max abs P&L = %v, want 400", h.MaxAbsPnL)
	}
}

func TestHeatmap_AllZeroUsesUnitScale(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-02", "09:30", 100, models.Float(0)),
		stockTrade("2", "2025-06-03", "12:30", 100, nil),
	}

	for _, tc := range []struct {
		name   string
		trades []models.Trade
	}{
		{"empty", nil},
		{"all zero", trades},
	} {
		h := newTestAggregator().Heatmap(tc.trades, june(t))
		if h.MaxAbsPnL != 1 {
			t.Errorf("%s: max abs P&L = %v, want 1", tc.name, h.MaxAbsPnL)
		}
		for _, row := range h.Rows {
			for _, c := range row.Cells {
				if c.Intensity != 0 || c.Color != ColorNeutral {
					t.Errorf("%s: cell %+v should be neutral", tc.name, c)
				}
			}
		}

		cal := newTestAggregator().Calendar(tc.trades, june(t))
		if cal.MaxAbsPnL != 1 {
			t.Errorf("%s: calendar max abs P&L = %v, want 1", tc.name, cal.MaxAbsPnL)
		}
	}
}

func TestCalendar_DailyTotalsAndStats(t *testing.T) {
	trades := []models.Trade{
		stockTrade("1", "2025-06-02", "09:30", 100, models.Float(-200)),
		stockTrade("2", "2025-06-02", "15:30", 100, models.Float(50)),
		stockTrade("3", "2025-06-05", "10:00", 100, models.Float(900)),
		stockTrade("4", "2025-06-06", "18:00", 100, models.Float(100)),
		stockTrade("5", "2025-06-06", "22:00", 100, models.Float(5000)), // out of session
	}

	cal := newTestAggregator().Calendar(trades, june(t))

	if len(cal.Days) != 30 {
		t.Fatalf("June has %d days, want 30", len(cal.Days))
	}
	if cal.LeadingBlanks != 0 {
		t.Errorf("June 1 2025 is a Sunday, leading blanks = %d", cal.LeadingBlanks)
	}

	mon, _ := cal.Day(2)
	if mon.Count != 2 || !mon.PnL.Equal(dec(-150)) || mon.Weekend {
		t.Errorf("June 2 = %+v, want 2 trades / -150", mon)
	}
	if len(mon.Slots) != 5 {
		t.Errorf("June 2 slot detail has %d entries, want 5", len(mon.Slots))
	}
	sat, _ := cal.Day(7)
	if !sat.Weekend || sat.Color != ColorWeekend || sat.Traded() {
		t.Errorf("June 7 = %+v, want untraded weekend", sat)
	}

	if cal.TradingDays != 3 || cal.TotalTrades != 4 {
		t.Errorf("trading days/trades = %d/%d, want 3/4", cal.TradingDays, cal.TotalTrades)
	}
	if !cal.TotalPnL.Equal(dec(850)) {
		t.Errorf("total = %s, want 850", cal.TotalPnL)
	}
	if cal.BestDay == nil || cal.BestDay.Day != 5 {
		t.Errorf("best day = %+v, want June 5", cal.BestDay)
	}
	if cal.WorstDay == nil || cal.WorstDay.Day != 2 {
		t.Errorf("worst day = %+v, want June 2", cal.WorstDay)
	}
	want := decimal.NewFromInt(850).Div(decimal.NewFromInt(3))
	if !cal.AvgDailyPnL.Equal(want) {
		t.Errorf("avg daily = %s, want %s", cal.AvgDailyPnL, want)
	}

	empty := newTestAggregator().Calendar(nil, june(t))
	if empty.BestDay != nil || empty.WorstDay != nil || !empty.AvgDailyPnL.IsZero() {
		t.Error("calendar without trades should have no best/worst day and zero average")
	}
}

func TestColorScale(t *testing.T) {
	if got := MaxAbs(nil); got != 1 {
		t.Errorf("MaxAbs(nil) = %v, want 1", got)
	}
	if got := MaxAbs([]float64{0, 0, 0}); got != 1 {
		t.Errorf("MaxAbs(zeros) = %v, want 1", got)
	}
	if got := MaxAbs([]float64{-300, 120}); got != 300 {
		t.Errorf("MaxAbs = %v, want 300", got)
	}
	if got := Intensity(150, 300); got != 0.5 {
		t.Errorf("Intensity(150, 300) = %v, want 0.5", got)
	}
	if got := Intensity(10, 0); got != 1 {
		t.Errorf("Intensity with zero max = %v, want clamp to 1", got)
	}
	if got := HeatColor(-300, 300); got != "rgba(191, 0, 255, 0.800)" {
		t.Errorf("HeatColor(-300) = %q", got)
	}
	if got := HeatColor(0, 300); got != ColorNeutral {
		t.Errorf("HeatColor(0) = %q", got)
	}
}

func TestParseMonth(t *testing.T) {
	if _, err := ParseMonth("June"); err == nil {
		t.Error("expected error for malformed month")
	}
	m, err := ParseMonth("2024-02")
	if err != nil || m.Month() != time.February || m.Year() != 2024 {
		t.Errorf("ParseMonth(2024-02) = %v, %v", m, err)
	}
}
