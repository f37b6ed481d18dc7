package performance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/models"
	"tradedesk/pkg/utils"
)

// SlotTotal is a day's P&L and count within one session slot.
type SlotTotal struct {
	Session utils.Session   `json:"session"`
	PnL     decimal.Decimal `json:"pnl"`
	Count   int             `json:"count"`
}

// CalendarDay is one day of the monthly P&L calendar.
type CalendarDay struct {
	Day       int             `json:"day"`
	Date      string          `json:"date"`
	Weekday   string          `json:"weekday"`
	Weekend   bool            `json:"weekend"`
	PnL       decimal.Decimal `json:"pnl"`
	Count     int             `json:"count"`
	Slots     []SlotTotal     `json:"slots,omitempty"`
	Intensity float64         `json:"intensity"`
	Color     string          `json:"color"`
}

// Traded reports whether any in-session trade landed on this day.
func (d CalendarDay) Traded() bool {
	return d.Count > 0
}

// Calendar is the monthly P&L calendar with month-level statistics.
type Calendar struct {
	Month string `json:"month"`
	// Blank cells before day 1 in a Sunday-first grid.
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`

	TotalPnL    decimal.Decimal `json:"totalPnL"`
	TotalTrades int             `json:"totalTrades"`
	TradingDays int             `json:"tradingDays"`
	BestDay     *CalendarDay    `json:"bestDay,omitempty"`
	WorstDay    *CalendarDay    `json:"worstDay,omitempty"`
	AvgDailyPnL decimal.Decimal `json:"avgDailyPnL"`
	MaxAbsPnL   float64         `json:"maxAbsPnL"`
}

// Day returns the calendar entry for a day of the month (1-based).
func (c *Calendar) Day(day int) (CalendarDay, bool) {
	if day < 1 || day > len(c.Days) {
		return CalendarDay{}, false
	}
	return c.Days[day-1], true
}

// Calendar builds the P&L calendar for the given month. Best, worst and
// average are taken over weekdays with at least one in-session trade.
func (a *Aggregator) Calendar(trades []models.Trade, month time.Time) *Calendar {
	grid := a.sessionGrid(trades, month)

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	cal := &Calendar{
		Month:         first.Format(MonthLayout),
		LeadingBlanks: int(first.Weekday()),
		TotalPnL:      decimal.Zero,
		AvgDailyPnL:   decimal.Zero,
	}

	n := utils.DaysInMonth(first)
	values := make([]float64, 0, n)
	for d := 1; d <= n; d++ {
		date := first.AddDate(0, 0, d-1)
		day := CalendarDay{
			Day:     d,
			Date:    date.Format(models.DateLayout),
			Weekday: date.Weekday().String(),
			Weekend: utils.IsWeekend(date.Weekday()),
			PnL:     decimal.Zero,
		}

		if dg, ok := grid[day.Date]; ok {
			for _, s := range utils.Sessions() {
				c := dg[s]
				day.PnL = day.PnL.Add(c.PnL)
				day.Count += c.Count
				day.Slots = append(day.Slots, SlotTotal{Session: s, PnL: c.PnL, Count: c.Count})
			}
			values = append(values, day.PnL.InexactFloat64())
		}
		cal.Days = append(cal.Days, day)
	}

	cal.MaxAbsPnL = MaxAbs(values)

	for i := range cal.Days {
		day := &cal.Days[i]
		pnl := day.PnL.InexactFloat64()
		day.Intensity = Intensity(pnl, cal.MaxAbsPnL)
		if day.Weekend {
			day.Color = ColorWeekend
		} else {
			day.Color = HeatColor(pnl, cal.MaxAbsPnL)
		}

		cal.TotalPnL = cal.TotalPnL.Add(day.PnL)
		cal.TotalTrades += day.Count

		if day.Weekend || !day.Traded() {
			continue
		}
		cal.TradingDays++
		if cal.BestDay == nil || day.PnL.GreaterThan(cal.BestDay.PnL) {
			best := *day
			cal.BestDay = &best
		}
		if cal.WorstDay == nil || day.PnL.LessThan(cal.WorstDay.PnL) {
			worst := *day
			cal.WorstDay = &worst
		}
	}

	if cal.TradingDays > 0 {
		sum := decimal.Zero
		for _, day := range cal.Days {
			if !day.Weekend && day.Traded() {
				sum = sum.Add(day.PnL)
			}
		}
		cal.AvgDailyPnL = sum.Div(decimal.NewFromInt(int64(cal.TradingDays)))
	}

	return cal
}

// String renders the month and trading-day count, for logs.
func (c *Calendar) String() string {
	return fmt.Sprintf("%s (%d trading days, %d trades)", c.Month, c.TradingDays, c.TotalTrades)
}
